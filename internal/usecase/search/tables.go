package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsift/docsift/internal/domain/search/mode"
	"github.com/docsift/docsift/internal/domain/search/query"
	"github.com/docsift/docsift/internal/domain/search/result"
)

// SearchTablesFigures finds tables whose cell data and figures whose caption
// contain the query text, case-insensitively. Structured extracts carry no
// similarity score, so every hit scores 1 and ordering follows the corpus
// order (file name, then page).
func (s *Service) SearchTablesFigures(ctx context.Context, q query.Query) ([]result.Result, error) {
	if q.Mode() == mode.Single {
		if _, err := s.content.GetDocument(ctx, q.TargetDocument()); err != nil {
			return nil, err
		}
	}

	chunks, err := s.content.FilteredChunks(ctx, q.EffectiveFilter())
	if err != nil {
		return nil, fmt.Errorf("load candidate chunks: %w", err)
	}

	needle := strings.ToLower(q.Text())
	results := make([]result.Result, 0, q.TopN())

	for i := range chunks {
		c := &chunks[i]
		for _, tb := range c.Tables {
			if strings.Contains(strings.ToLower(tb.Data), needle) {
				results = append(results, result.New(c.FileName, c.Page, tb.Data, 1, result.OriginTable))
			}
		}
		for _, fg := range c.Figures {
			if strings.Contains(strings.ToLower(fg.Caption), needle) {
				results = append(results, result.New(c.FileName, c.Page, fg.Caption, 1, result.OriginFigure))
			}
		}
		if len(results) >= q.TopN() {
			break
		}
	}

	if len(results) > q.TopN() {
		results = results[:q.TopN()]
	}
	return results, nil
}
