package embcache

import (
	"context"
	"time"

	"github.com/docsift/docsift/internal/db"
	"github.com/docsift/docsift/internal/domain"
)

type mockEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{
		Embedding:    m.embedding,
		PromptTokens: 3,
		TotalTokens:  3,
	}, nil
}

type mockStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	getHits int
	setHits int
}

func newMockStore() *mockStore {
	return &mockStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.getHits++
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
