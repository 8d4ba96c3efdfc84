package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{embedding: []float32{0.1, 0.2, 0.3}}
	store := newMockStore()
	cached := New(inner, store, "docsift:", time.Hour, nil, zap.NewNop())

	first, err := cached.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if first.TotalTokens != 3 {
		t.Errorf("expected token usage on miss, got %d", first.TotalTokens)
	}

	second, err := cached.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected cached result, inner called %d times", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("expected zero token usage on hit, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(second.Embedding))
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Errorf("dim %d: cached %v != original %v", i, second.Embedding[i], first.Embedding[i])
		}
	}
}

func TestEmbed_DifferentTextsGetDifferentKeys(t *testing.T) {
	inner := &mockEmbedder{embedding: []float32{1}}
	store := newMockStore()
	cached := New(inner, store, "docsift:", time.Hour, nil, zap.NewNop())

	if _, err := cached.Embed(context.Background(), "alpha"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Embed(context.Background(), "beta"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.calls)
	}
	if len(store.data) != 2 {
		t.Errorf("expected 2 cache entries, got %d", len(store.data))
	}
}

func TestEmbed_StoreErrorsAreNonFatal(t *testing.T) {
	inner := &mockEmbedder{embedding: []float32{0.5}}
	store := newMockStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	cached := New(inner, store, "docsift:", time.Hour, nil, zap.NewNop())

	result, err := cached.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected cache failures to be swallowed, got: %v", err)
	}
	if len(result.Embedding) != 1 {
		t.Fatalf("expected embedding passthrough, got %v", result.Embedding)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	inner := &mockEmbedder{err: wantErr}
	store := newMockStore()
	cached := New(inner, store, "docsift:", time.Hour, nil, zap.NewNop())

	_, err := cached.Embed(context.Background(), "hello")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if store.setHits != 0 {
		t.Errorf("expected no cache write on error, got %d", store.setHits)
	}
}

func TestEmbed_TTLPassedToStore(t *testing.T) {
	inner := &mockEmbedder{embedding: []float32{1}}
	store := newMockStore()
	cached := New(inner, store, "docsift:", 30*time.Minute, nil, zap.NewNop())

	if _, err := cached.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ttl := range store.ttls {
		if ttl != 30*time.Minute {
			t.Errorf("expected 30m TTL, got %v", ttl)
		}
	}
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.14159}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d dims, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("dim %d: %v != %v", i, out[i], in[i])
		}
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for non-multiple-of-4 input")
	}
}
