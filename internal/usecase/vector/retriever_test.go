package vector

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
)

func TestSearch_IdenticalEmbeddingRanksFirst(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1, 0, 0}}
	retriever := New(embedder, nil, 0.5, zap.NewNop())

	chunks := []domain.Chunk{
		chunk("a.pdf", 1, 0, 1, 0),
		chunk("a.pdf", 2, 0.7, 0.7, 0),
		chunk("c.pdf", 3, 1, 0, 0), // identical to the query
	}

	results, err := retriever.Search(context.Background(), chunks, "q", 5, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	top := results[0]
	if top.FileName() != "c.pdf" || top.Page() != 3 {
		t.Errorf("expected identical chunk first, got %s page %d", top.FileName(), top.Page())
	}
	if math.Abs(top.Score()-1.0) > 1e-6 {
		t.Errorf("expected score 1.0, got %v", top.Score())
	}
}

func TestSearch_HighThresholdYieldsEmptyNotError(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	retriever := New(embedder, nil, 0, zap.NewNop())

	chunks := []domain.Chunk{chunk("a.pdf", 1, 0.8, 0.6)}

	results, err := retriever.Search(context.Background(), chunks, "q", 5, 0.99)
	if err != nil {
		t.Fatalf("expected empty result, got error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results above 0.99, got %d", len(results))
	}
}

func TestSearch_ThresholdFiltersLowScores(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	retriever := New(embedder, nil, 0.65, zap.NewNop())

	chunks := []domain.Chunk{
		chunk("hi.pdf", 1, 1, 0),   // similarity 1.0
		chunk("lo.pdf", 1, 0, 1),   // similarity 0.0
		chunk("mid.pdf", 1, 1, 1),  // similarity ~0.707
		chunk("sub.pdf", 1, 1, 10), // similarity ~0.1
	}

	results, err := retriever.Search(context.Background(), chunks, "q", 5, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results above 0.65, got %d", len(results))
	}
	if results[0].FileName() != "hi.pdf" || results[1].FileName() != "mid.pdf" {
		t.Errorf("unexpected order: %s, %s", results[0].FileName(), results[1].FileName())
	}
}

func TestSearch_TruncatesToTopN(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	retriever := New(embedder, nil, 0.1, zap.NewNop())

	var chunks []domain.Chunk
	for page := 1; page <= 10; page++ {
		chunks = append(chunks, chunk("a.pdf", page, 1, 0))
	}

	results, err := retriever.Search(context.Background(), chunks, "q", 3, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestSearch_EmbedErrorPropagates(t *testing.T) {
	wantErr := errors.New("provider down")
	retriever := New(&mockEmbedder{err: wantErr}, nil, 0, zap.NewNop())

	_, err := retriever.Search(context.Background(), []domain.Chunk{chunk("a.pdf", 1, 1)}, "q", 5, 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestSearch_EmptyCandidatesSkipEmbedding(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1}}
	retriever := New(embedder, nil, 0, zap.NewNop())

	results, err := retriever.Search(context.Background(), nil, "q", 5, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty, got %d", len(results))
	}
	if embedder.calls != 0 {
		t.Errorf("expected no embedding call for empty candidate set, got %d", embedder.calls)
	}
}

func TestSearch_IndexPathIntersectsCandidates(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	index := &mockIndex{hits: map[domain.Key]float64{
		{FileName: "a.pdf", Page: 1}: 0.9,
		{FileName: "b.pdf", Page: 7}: 0.95, // not in the candidate set
	}}
	retriever := New(embedder, index, 0.5, zap.NewNop())

	chunks := []domain.Chunk{chunk("a.pdf", 1, 1, 0)}
	results, err := retriever.Search(context.Background(), chunks, "q", 5, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only the candidate hit, got %d", len(results))
	}
	if results[0].FileName() != "a.pdf" || results[0].Score() != 0.9 {
		t.Errorf("unexpected result: %s score %v", results[0].FileName(), results[0].Score())
	}
	if index.calls != 1 {
		t.Errorf("expected 1 index call, got %d", index.calls)
	}
}

func TestSearch_IndexErrorFallsBackToLocalScan(t *testing.T) {
	embedder := &mockEmbedder{embedding: []float32{1, 0}}
	index := &mockIndex{err: errors.New("index gone")}
	retriever := New(embedder, index, 0.5, zap.NewNop())

	chunks := []domain.Chunk{chunk("a.pdf", 1, 1, 0)}
	results, err := retriever.Search(context.Background(), chunks, "q", 5, 0)
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result from local scan, got %d", len(results))
	}
	if math.Abs(results[0].Score()-1.0) > 1e-6 {
		t.Errorf("expected local cosine score 1.0, got %v", results[0].Score())
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cosine(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-6 {
				t.Errorf("cosine = %v, want %v", got, tc.want)
			}
		})
	}
}
