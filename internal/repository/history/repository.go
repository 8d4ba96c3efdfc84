// Package history persists search-history entries in a capped list.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
)

type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

type entryDTO struct {
	ID             string `json:"id"`
	Query          string `json:"query"`
	Mode           string `json:"mode"`
	TargetDocument string `json:"target_document,omitempty"`
	Filters        string `json:"filters,omitempty"`
	Timestamp      int64  `json:"timestamp"`
	ResultCount    int    `json:"result_count"`
}

// Repository stores history entries newest-first, trimmed to a fixed cap.
type Repository struct {
	store  store
	key    string
	limit  int64
	logger *zap.Logger
}

// New creates a history repository. limit caps the number of retained
// entries; values below 1 fall back to 1000.
func New(s store, keyPrefix string, limit int, logger *zap.Logger) *Repository {
	if limit < 1 {
		limit = 1000
	}
	return &Repository{
		store:  s,
		key:    keyPrefix + "search_history",
		limit:  int64(limit),
		logger: logger,
	}
}

// Append records one history entry and trims the list to the cap.
func (r *Repository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	data, err := json.Marshal(entryDTO{
		ID:             entry.ID,
		Query:          entry.Query,
		Mode:           entry.Mode,
		TargetDocument: entry.TargetDocument,
		Filters:        entry.Filters,
		Timestamp:      entry.Timestamp,
		ResultCount:    entry.ResultCount,
	})
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	if err := r.store.LPush(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("push history entry: %w", err)
	}
	if err := r.store.LTrim(ctx, r.key, 0, r.limit-1); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. Malformed entries are
// skipped with a warning rather than failing the whole read.
func (r *Repository) Recent(ctx context.Context, n int) ([]domain.HistoryEntry, error) {
	if n < 1 {
		n = 1
	}
	raw, err := r.store.LRange(ctx, r.key, 0, int64(n)-1)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var dto entryDTO
		if err := json.Unmarshal([]byte(item), &dto); err != nil {
			r.logger.Warn("Skipping malformed history entry", zap.Error(err))
			continue
		}
		entries = append(entries, domain.HistoryEntry{
			ID:             dto.ID,
			Query:          dto.Query,
			Mode:           dto.Mode,
			TargetDocument: dto.TargetDocument,
			Filters:        dto.Filters,
			Timestamp:      dto.Timestamp,
			ResultCount:    dto.ResultCount,
		})
	}
	return entries, nil
}
