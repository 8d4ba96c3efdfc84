// Package termcache caches synonym-expansion terms to avoid repeated LLM calls
// for identical queries.
package termcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/db"
	"github.com/docsift/docsift/internal/metrics"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Expander produces related terms for a query.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// CachedExpander is a TTL'd caching decorator over an Expander.
// An empty term list is a valid, cacheable outcome.
type CachedExpander struct {
	inner     Expander
	store     store
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// New creates a caching decorator over inner.
func New(inner Expander, s store, keyPrefix string, ttl time.Duration, logger *zap.Logger) *CachedExpander {
	return &CachedExpander{
		inner:     inner,
		store:     s,
		keyPrefix: keyPrefix + "syn_cache:",
		ttl:       ttl,
		logger:    logger,
	}
}

// Expand returns cached terms or calls the inner expander and caches its result.
func (c *CachedExpander) Expand(ctx context.Context, query string) ([]string, error) {
	key := c.cacheKey(query)

	if terms, ok := c.getFromCache(ctx, key); ok {
		metrics.SynonymExpansionTotal.WithLabelValues("cached").Inc()
		return terms, nil
	}

	terms, err := c.inner.Expand(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("expand terms: %w", err)
	}

	c.putToCache(ctx, key, terms)
	return terms, nil
}

func (c *CachedExpander) cacheKey(query string) string {
	h := sha256.Sum256([]byte(query))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedExpander) getFromCache(ctx context.Context, key string) ([]string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached terms", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		c.logger.Warn("Failed to parse cached terms", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return terms, true
}

func (c *CachedExpander) putToCache(ctx context.Context, key string, terms []string) {
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		c.logger.Warn("Failed to encode terms for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache terms", zap.String("key", key), zap.Error(err))
	}
}
