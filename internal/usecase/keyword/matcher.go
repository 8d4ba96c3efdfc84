// Package keyword implements exact-term retrieval with optional LLM synonym
// expansion.
package keyword

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/result"
	"github.com/docsift/docsift/internal/metrics"
)

// Expander produces related terms for a query. A nil Expander disables
// synonym expansion regardless of the per-query flag.
type Expander interface {
	Expand(ctx context.Context, query string) ([]string, error)
}

// Matcher scores chunks by the fraction of search terms found in their text.
type Matcher struct {
	expander Expander
	logger   *zap.Logger
}

// New creates a keyword matcher.
func New(expander Expander, logger *zap.Logger) *Matcher {
	return &Matcher{expander: expander, logger: logger}
}

// Search returns chunks containing at least one search term, best first, at
// most topN. Terms are matched as case-insensitive substrings. Expansion
// failures degrade to original-query-only matching, never to an error.
func (m *Matcher) Search(
	ctx context.Context,
	chunks []domain.Chunk,
	text string,
	topN int,
	expandSynonyms bool,
) ([]result.Result, error) {
	similar := m.expandTerms(ctx, text, expandSynonyms)
	terms := append([]string{text}, similar...)

	similarSet := make(map[string]struct{}, len(similar))
	for _, s := range similar {
		similarSet[strings.ToLower(s)] = struct{}{}
	}

	results := make([]result.Result, 0, topN)
	for i := range chunks {
		c := &chunks[i]
		haystack := strings.ToLower(c.Text)

		var matched, matchedSimilar []string
		for _, term := range terms {
			if !strings.Contains(haystack, strings.ToLower(term)) {
				continue
			}
			matched = append(matched, term)
			if _, ok := similarSet[strings.ToLower(term)]; ok {
				matchedSimilar = append(matchedSimilar, term)
			}
		}
		if len(matched) == 0 {
			continue
		}

		score := float64(len(matched)) / float64(len(terms))
		results = append(results, result.NewKeyword(c.FileName, c.Page, c.Text, score, matched, matchedSimilar))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

func (m *Matcher) expandTerms(ctx context.Context, text string, expandSynonyms bool) []string {
	if !expandSynonyms || m.expander == nil {
		return nil
	}

	similar, err := m.expander.Expand(ctx, text)
	if err != nil {
		metrics.SynonymExpansionTotal.WithLabelValues("error").Inc()
		m.logger.Warn("Synonym expansion failed, searching original query only", zap.Error(err))
		return nil
	}
	if len(similar) == 0 {
		metrics.SynonymExpansionTotal.WithLabelValues("fallback").Inc()
		return nil
	}

	metrics.SynonymExpansionTotal.WithLabelValues("ok").Inc()
	return similar
}
