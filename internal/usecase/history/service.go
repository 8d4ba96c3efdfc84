// Package history exposes read access to recorded searches.
package history

import (
	"context"
	"fmt"

	"github.com/docsift/docsift/internal/domain"
)

// DefaultLimit is the page size used when the caller does not ask for one.
const DefaultLimit = 20

// MaxLimit caps a single read.
const MaxLimit = 200

type reader interface {
	Recent(ctx context.Context, n int) ([]domain.HistoryEntry, error)
}

// Service reads search history.
type Service struct {
	reader reader
}

// New creates the history service.
func New(r reader) *Service {
	return &Service{reader: r}
}

// Recent returns up to n entries, newest first. n <= 0 selects DefaultLimit
// and requests above MaxLimit are clamped.
func (s *Service) Recent(ctx context.Context, n int) ([]domain.HistoryEntry, error) {
	if n <= 0 {
		n = DefaultLimit
	}
	if n > MaxLimit {
		n = MaxLimit
	}

	entries, err := s.reader.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("read recent history: %w", err)
	}
	return entries, nil
}
