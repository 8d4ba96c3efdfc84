// Package docsift is an embedded hybrid-search engine for chunked PDF
// content: semantic (embedding) and keyword retrieval over a Redis-backed
// corpus, with merged, deduplicated results.
package docsift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/db"
	dbRedis "github.com/docsift/docsift/internal/db/redis"
	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/metrics"
	contentrepo "github.com/docsift/docsift/internal/repository/content"
	historyrepo "github.com/docsift/docsift/internal/repository/history"
	historyuc "github.com/docsift/docsift/internal/usecase/history"
	keyworduc "github.com/docsift/docsift/internal/usecase/keyword"
	searchuc "github.com/docsift/docsift/internal/usecase/search"
	vectoruc "github.com/docsift/docsift/internal/usecase/vector"
)

const defaultReadinessTimeout = 10 * time.Second

// Embedder turns text into a vector. Implementations typically call a
// remote embedding API.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult is the output of one embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Expander produces related search terms for a query.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// Client is the docsift SDK entry point.
type Client struct {
	store      db.Store
	content    *contentrepo.Repository
	searchSvc  *searchuc.Service
	historySvc *historyuc.Service
}

// New creates a docsift Client and connects to Redis.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:    "docsift:",
		threshold:    vectoruc.DefaultThreshold,
		historyLimit: 1000,
		logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("docsift: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("docsift: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("docsift: database not ready: %w", err)
	}

	metrics.RegisterSearchMetrics()
	return wireClient(ctx, store, cfg)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	content := contentrepo.New(store, contentrepo.Config{
		KeyPrefix: cfg.keyPrefix,
		VectorDim: cfg.vectorDim,
	}, cfg.logger)
	if cfg.vectorDim > 0 {
		if err := content.EnsureIndex(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("docsift: ensure chunk index: %w", err)
		}
	}
	historyRepo := historyrepo.New(store, cfg.keyPrefix, cfg.historyLimit, cfg.logger)

	// Embedder: noop unless configured. Keyword search still works.
	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	var index vectoruc.Index
	if cfg.vectorDim > 0 {
		index = content
	}
	retriever := vectoruc.New(domEmb, index, cfg.threshold, cfg.logger)
	matcher := keyworduc.New(cfg.expander, cfg.logger)

	return &Client{
		store:      store,
		content:    content,
		searchSvc:  searchuc.New(content, retriever, matcher, historyRepo, cfg.logger),
		historySvc: historyuc.New(historyRepo),
	}, nil
}

// Close releases all resources after draining pending history writes.
func (c *Client) Close() {
	if c.searchSvc != nil {
		c.searchSvc.Drain()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy internal
// domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder errors on use (semantic search without a configured embedder).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"docsift: embedder not configured (use WithEmbedder for semantic search)",
	)
}
