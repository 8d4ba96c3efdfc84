package search

import (
	"context"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/result"
)

// ContentStore provides the filtered chunk corpus. Filtering happens here,
// before scoring; the search branches never re-filter.
type ContentStore interface {
	GetDocument(ctx context.Context, fileName string) (domain.DocumentMeta, error)
	FilteredChunks(ctx context.Context, f filter.Filter) ([]domain.Chunk, error)
}

// VectorSearcher is the semantic retrieval branch.
type VectorSearcher interface {
	Search(ctx context.Context, chunks []domain.Chunk, text string, topN int, threshold float64) ([]result.Result, error)
}

// KeywordSearcher is the exact-term retrieval branch.
type KeywordSearcher interface {
	Search(ctx context.Context, chunks []domain.Chunk, text string, topN int, expandSynonyms bool) ([]result.Result, error)
}

// HistorySink records executed searches. Recording is best-effort: sink
// failures never fail a search.
type HistorySink interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
}
