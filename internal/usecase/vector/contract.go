package vector

import (
	"context"

	"github.com/docsift/docsift/internal/domain"
)

// Index is the optional index-accelerated KNN path. A nil Index makes the
// retriever score every candidate chunk locally.
type Index interface {
	SearchKNN(ctx context.Context, vector []float32, k int, fileNames []string) (map[domain.Key]float64, error)
}
