// Package vector implements semantic retrieval: query embedding plus
// cosine-similarity ranking over candidate chunks.
package vector

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/result"
)

// DefaultThreshold is the similarity cutoff used when neither the query nor
// the retriever configuration supplies one.
const DefaultThreshold = 0.65

// indexOverfetch widens the KNN request so that index hits pruned by the
// candidate-set intersection still leave enough survivors.
const indexOverfetch = 4

// Retriever ranks candidate chunks by embedding similarity to the query.
type Retriever struct {
	embedder  domain.Embedder
	index     Index // nil disables the accelerated path
	threshold float64
	logger    *zap.Logger
}

// New creates a vector retriever. threshold <= 0 selects DefaultThreshold.
func New(embedder domain.Embedder, index Index, threshold float64, logger *zap.Logger) *Retriever {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		threshold: threshold,
		logger:    logger,
	}
}

// Search embeds the query text and returns chunks scoring at or above the
// threshold, best first, at most topN. Chunks outside the candidate set are
// never returned, even if the index knows them. An empty result is a valid
// outcome, not an error.
func (r *Retriever) Search(
	ctx context.Context,
	chunks []domain.Chunk,
	text string,
	topN int,
	threshold float64,
) ([]result.Result, error) {
	if len(chunks) == 0 {
		return []result.Result{}, nil
	}
	if threshold <= 0 {
		threshold = r.threshold
	}

	emb, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scores := r.scoreChunks(ctx, chunks, emb.Embedding, topN)

	results := make([]result.Result, 0, topN)
	for i := range chunks {
		c := &chunks[i]
		score, ok := scores[c.Key()]
		if !ok || score < threshold {
			continue
		}
		results = append(results, result.New(c.FileName, c.Page, c.Text, score, result.OriginVector))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// scoreChunks prefers the index path and silently falls back to a local
// cosine scan when the index fails or is absent.
func (r *Retriever) scoreChunks(
	ctx context.Context, chunks []domain.Chunk, queryVec []float32, topN int,
) map[domain.Key]float64 {
	if r.index != nil {
		if scores, err := r.indexScores(ctx, chunks, queryVec, topN); err == nil {
			return scores
		} else {
			r.logger.Warn("Index search failed, falling back to local scan", zap.Error(err))
		}
	}

	scores := make(map[domain.Key]float64, len(chunks))
	for i := range chunks {
		scores[chunks[i].Key()] = cosine(queryVec, chunks[i].Embedding)
	}
	return scores
}

func (r *Retriever) indexScores(
	ctx context.Context, chunks []domain.Chunk, queryVec []float32, topN int,
) (map[domain.Key]float64, error) {
	candidates := make(map[domain.Key]struct{}, len(chunks))
	fileSet := make(map[string]struct{})
	for i := range chunks {
		candidates[chunks[i].Key()] = struct{}{}
		fileSet[chunks[i].FileName] = struct{}{}
	}
	fileNames := make([]string, 0, len(fileSet))
	for name := range fileSet {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	k := topN * indexOverfetch
	if k > len(chunks) {
		k = len(chunks)
	}

	hits, err := r.index.SearchKNN(ctx, queryVec, k, fileNames)
	if err != nil {
		return nil, err
	}

	// The index pre-filters by file name only; page-level and other
	// constraints are enforced by intersecting with the candidate set.
	scores := make(map[domain.Key]float64, len(hits))
	for key, score := range hits {
		if _, ok := candidates[key]; ok {
			scores[key] = score
		}
	}
	return scores, nil
}
