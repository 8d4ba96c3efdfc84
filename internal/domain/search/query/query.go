package query

import (
	"fmt"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/kind"
	"github.com/docsift/docsift/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 4096
	DefaultTopN   = 5
	MaxTopN       = 100
)

// Query is a validated, immutable search request.
type Query struct {
	text           string
	searchMode     mode.Mode
	targetDocument string
	filters        filter.Filter
	searchKind     kind.Kind
	topN           int
	threshold      float64
	expandSynonyms bool
}

// New validates and normalizes search parameters.
// Defaults: mode=all, kind=hybrid, topN=5, threshold=0 (use the configured
// global default). Single mode requires a target document.
func New(
	text string,
	m mode.Mode,
	targetDocument string,
	filters filter.Filter,
	k kind.Kind,
	topN int,
	threshold float64,
	expandSynonyms bool,
) (Query, error) {
	if text == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxTextLength)
	}
	if m == "" {
		m = mode.All
	}
	if !m.IsValid() {
		return Query{}, fmt.Errorf("%w: invalid mode %q", domain.ErrInvalidQuery, m)
	}
	if m == mode.Single && targetDocument == "" {
		return Query{}, fmt.Errorf("%w: single mode requires a target document", domain.ErrInvalidQuery)
	}
	if k == "" {
		k = kind.Hybrid
	}
	if !k.IsValid() {
		return Query{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedSearchType, k)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}
	if threshold < 0 || threshold > 1 {
		return Query{}, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidQuery)
	}

	return Query{
		text:           text,
		searchMode:     m,
		targetDocument: targetDocument,
		filters:        filters,
		searchKind:     k,
		topN:           topN,
		threshold:      threshold,
		expandSynonyms: expandSynonyms,
	}, nil
}

// Text returns the raw query text.
func (q *Query) Text() string { return q.text }

// Mode returns the document scope.
func (q *Query) Mode() mode.Mode { return q.searchMode }

// TargetDocument returns the single-mode target file name.
func (q *Query) TargetDocument() string { return q.targetDocument }

// Filters returns the user-supplied filter set.
func (q *Query) Filters() filter.Filter { return q.filters }

// Kind returns the search strategy.
func (q *Query) Kind() kind.Kind { return q.searchKind }

// TopN returns the result count bound.
func (q *Query) TopN() int { return q.topN }

// Threshold returns the similarity threshold, 0 meaning the configured default.
func (q *Query) Threshold() float64 { return q.threshold }

// ExpandSynonyms reports whether keyword search should expand the query.
func (q *Query) ExpandSynonyms() bool { return q.expandSynonyms }

// EffectiveFilter returns the filter actually applied to the corpus: in
// single mode the file-name constraint is forced to the target document.
func (q *Query) EffectiveFilter() filter.Filter {
	if q.searchMode == mode.Single {
		return q.filters.ForceFileName(q.targetDocument)
	}
	return q.filters
}
