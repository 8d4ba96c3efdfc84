package search

import (
	"sort"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/result"
)

// merge combines the two branch result lists into one ranked list.
//
// Duplicates are detected by (file name, page) and resolved first-wins with
// the vector list leading, so a chunk found by both branches keeps its
// vector score and origin. Scores are not fused. Ordering is by normalized
// score descending, ties keeping insertion order, truncated to topN.
func merge(vectorResults, keywordResults []result.Result, topN int) []result.Result {
	merged := make([]result.Result, 0, len(vectorResults)+len(keywordResults))
	seen := make(map[domain.Key]struct{}, len(vectorResults)+len(keywordResults))

	for _, r := range append(append([]result.Result{}, vectorResults...), keywordResults...) {
		key := domain.Key{FileName: r.FileName(), Page: r.Page()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].NormalizedScore() > merged[j].NormalizedScore()
	})
	if len(merged) > topN {
		merged = merged[:topN]
	}
	return merged
}
