package vector

import (
	"context"

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
	return domain.EmbeddingResult{Embedding: m.embedding}, nil
}

type mockIndex struct {
	hits  map[domain.Key]float64
	err   error
	calls int
	lastK int
}

func (m *mockIndex) SearchKNN(
	_ context.Context, _ []float32, k int, _ []string,
) (map[domain.Key]float64, error) {
	m.calls++
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func chunk(fileName string, page int, emb ...float32) domain.Chunk {
	return domain.Chunk{
		FileName:  fileName,
		Page:      page,
		Text:      "chunk text",
		Embedding: emb,
	}
}
