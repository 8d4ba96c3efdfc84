// Package search orchestrates hybrid retrieval: it fans a query out to the
// vector and keyword branches over a shared filtered candidate set, merges
// and ranks their results, and records history.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/kind"
	"github.com/docsift/docsift/internal/domain/search/mode"
	"github.com/docsift/docsift/internal/domain/search/query"
	"github.com/docsift/docsift/internal/domain/search/result"
	"github.com/docsift/docsift/internal/metrics"
)

// historyTimeout bounds the detached history write.
const historyTimeout = 3 * time.Second

// Service is the search orchestrator.
type Service struct {
	content ContentStore
	vector  VectorSearcher
	keyword KeywordSearcher
	history HistorySink
	logger  *zap.Logger

	// wg tracks detached history writes so tests and shutdown can drain them.
	wg sync.WaitGroup
}

// New creates the search service. history may be nil to disable recording.
func New(
	content ContentStore,
	vector VectorSearcher,
	keyword KeywordSearcher,
	history HistorySink,
	logger *zap.Logger,
) *Service {
	return &Service{
		content: content,
		vector:  vector,
		keyword: keyword,
		history: history,
		logger:  logger,
	}
}

// Response is the outcome of one search call.
type Response struct {
	Results    []result.Result
	Candidates int  // size of the filtered candidate set
	Partial    bool // true when one hybrid branch failed and was skipped
}

// Search runs a validated query and returns the merged, ranked results.
// In hybrid mode a single failed branch degrades to partial results; the
// search fails only when no branch can contribute.
func (s *Service) Search(ctx context.Context, q query.Query) (*Response, error) {
	start := time.Now()

	resp, err := s.search(ctx, q)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(q.Kind()), string(q.Mode()), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(q.Kind())).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.SearchResultsReturned.WithLabelValues(string(q.Kind())).Observe(float64(len(resp.Results)))
	s.recordHistory(ctx, q, len(resp.Results))

	s.logger.Info("Search completed",
		zap.String("kind", string(q.Kind())),
		zap.String("mode", string(q.Mode())),
		zap.Int("candidates", resp.Candidates),
		zap.Int("results", len(resp.Results)),
		zap.Bool("partial", resp.Partial),
		zap.Duration("took", time.Since(start)))
	return resp, nil
}

func (s *Service) search(ctx context.Context, q query.Query) (*Response, error) {
	if q.Mode() == mode.Single {
		if _, err := s.content.GetDocument(ctx, q.TargetDocument()); err != nil {
			return nil, err
		}
	}

	chunks, err := s.content.FilteredChunks(ctx, q.EffectiveFilter())
	if err != nil {
		return nil, fmt.Errorf("load candidate chunks: %w", err)
	}

	var (
		vectorResults, keywordResults []result.Result
		partial                       bool
	)

	switch q.Kind() {
	case kind.Vector:
		vectorResults, err = s.vector.Search(ctx, chunks, q.Text(), q.TopN(), q.Threshold())
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
	case kind.Keyword:
		keywordResults, err = s.keyword.Search(ctx, chunks, q.Text(), q.TopN(), q.ExpandSynonyms())
		if err != nil {
			return nil, fmt.Errorf("keyword search: %w", err)
		}
	case kind.Hybrid:
		vectorResults, keywordResults, partial, err = s.searchHybrid(ctx, chunks, q)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSearchType, q.Kind())
	}

	return &Response{
		Results:    merge(vectorResults, keywordResults, q.TopN()),
		Candidates: len(chunks),
		Partial:    partial,
	}, nil
}

// searchHybrid runs both branches concurrently over the same candidate set.
func (s *Service) searchHybrid(
	ctx context.Context, chunks []domain.Chunk, q query.Query,
) (vectorResults, keywordResults []result.Result, partial bool, err error) {
	var (
		wg            sync.WaitGroup
		vecErr, kwErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorResults, vecErr = s.vector.Search(ctx, chunks, q.Text(), q.TopN(), q.Threshold())
	}()
	go func() {
		defer wg.Done()
		keywordResults, kwErr = s.keyword.Search(ctx, chunks, q.Text(), q.TopN(), q.ExpandSynonyms())
	}()
	wg.Wait()

	if vecErr != nil && kwErr != nil {
		return nil, nil, false, fmt.Errorf("both search branches failed: vector: %w; keyword: %v", vecErr, kwErr)
	}
	if vecErr != nil {
		s.logger.Warn("Vector branch failed, returning keyword results only", zap.Error(vecErr))
		return nil, keywordResults, true, nil
	}
	if kwErr != nil {
		s.logger.Warn("Keyword branch failed, returning vector results only", zap.Error(kwErr))
		return vectorResults, nil, true, nil
	}
	return vectorResults, keywordResults, false, nil
}

// recordHistory writes the history entry on a detached context so a slow or
// failing sink cannot delay the response.
func (s *Service) recordHistory(ctx context.Context, q query.Query, resultCount int) {
	if s.history == nil {
		return
	}

	entry := &domain.HistoryEntry{
		ID:             uuid.NewString(),
		Query:          q.Text(),
		Mode:           string(q.Mode()),
		TargetDocument: q.TargetDocument(),
		Filters:        describeFilter(q.Filters()),
		Timestamp:      time.Now().UnixMilli(),
		ResultCount:    resultCount,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
		defer cancel()
		if err := s.history.Append(hctx, entry); err != nil {
			s.logger.Warn("Failed to record search history", zap.Error(err))
		}
	}()
}

// Drain waits for in-flight history writes. Called on shutdown.
func (s *Service) Drain() {
	s.wg.Wait()
}

// describeFilter serializes the filter for the history record. The output
// is informational only and never parsed back.
func describeFilter(f filter.Filter) string {
	if f.IsEmpty() {
		return ""
	}

	view := map[string]any{}
	if dr := f.DateRange(); dr != nil {
		view["date_range"] = map[string]int64{"start": dr.Start, "end": dr.End}
	}
	if pr := f.PageRange(); pr != nil {
		view["page_range"] = map[string]int{"first": pr.First, "last": pr.Last}
	}
	if v := f.FileTypes(); len(v) > 0 {
		view["file_types"] = v
	}
	if v := f.Tags(); len(v) > 0 {
		view["tags"] = v
	}
	if v := f.Folders(); len(v) > 0 {
		view["folders"] = v
	}
	if v := f.FileNames(); len(v) > 0 {
		view["file_names"] = v
	}

	data, err := json.Marshal(view)
	if err != nil {
		return ""
	}
	return string(data)
}
