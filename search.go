package docsift

import (
	"context"
	"fmt"

	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/kind"
	"github.com/docsift/docsift/internal/domain/search/mode"
	"github.com/docsift/docsift/internal/domain/search/query"
	"github.com/docsift/docsift/internal/domain/search/result"
)

// SearchMode scopes a search to the whole corpus or a single document.
type SearchMode string

// Search modes.
const (
	ModeAll    SearchMode = "all"
	ModeSingle SearchMode = "single"
)

// SearchType selects the retrieval strategy.
type SearchType string

// Search types.
const (
	TypeHybrid  SearchType = "hybrid"
	TypeVector  SearchType = "vector"
	TypeKeyword SearchType = "keyword"
)

// DateRange bounds document upload time, inclusive, unix millis.
type DateRange struct {
	Start int64
	End   int64
}

// PageRange bounds chunk page numbers, inclusive.
type PageRange struct {
	First int
	Last  int
}

// Filters narrows the searched corpus. Zero values mean no constraint.
type Filters struct {
	DateRange *DateRange
	FileTypes []string
	PageRange *PageRange
	Tags      []string
	Folders   []string
	FileNames []string
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Mode           SearchMode // default all
	TargetDocument string     // required for ModeSingle
	Type           SearchType // default hybrid
	TopN           int        // default 5
	Threshold      float64    // 0 selects the client default
	ExpandSynonyms bool
	Filters        Filters
}

// SearchResult is a single search hit.
type SearchResult struct {
	FileName     string
	Page         int
	Text         string
	Score        float64 // normalized to [0,1]
	Origin       string  // vector, keyword, table or figure
	MatchedTerms []string
	SimilarTerms []string
}

// SearchResponse is the outcome of one search call.
type SearchResponse struct {
	Results    []SearchResult
	Candidates int  // size of the filtered candidate set
	Partial    bool // true when one hybrid branch failed and was skipped
}

// Search runs a hybrid, vector or keyword search over the corpus.
func (c *Client) Search(ctx context.Context, text string, opts *SearchOptions) (*SearchResponse, error) {
	q, err := buildQuery(text, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	resp, err := c.searchSvc.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return &SearchResponse{
		Results:    fromResults(resp.Results),
		Candidates: resp.Candidates,
		Partial:    resp.Partial,
	}, nil
}

// SearchExtracts runs a containment search over extracted tables and figure
// captions.
func (c *Client) SearchExtracts(ctx context.Context, text string, opts *SearchOptions) ([]SearchResult, error) {
	q, err := buildQuery(text, opts)
	if err != nil {
		return nil, fmt.Errorf("search extracts: %w", err)
	}

	results, err := c.searchSvc.SearchTablesFigures(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search extracts: %w", err)
	}
	return fromResults(results), nil
}

func buildQuery(text string, opts *SearchOptions) (query.Query, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	filters, err := toInternalFilter(opts.Filters)
	if err != nil {
		return query.Query{}, err
	}

	return query.New(
		text,
		mode.Mode(opts.Mode),
		opts.TargetDocument,
		filters,
		kind.Kind(opts.Type),
		opts.TopN,
		opts.Threshold,
		opts.ExpandSynonyms,
	)
}

func toInternalFilter(f Filters) (filter.Filter, error) {
	var opts []filter.Option
	if f.DateRange != nil {
		opts = append(opts, filter.WithDateRange(f.DateRange.Start, f.DateRange.End))
	}
	if f.PageRange != nil {
		opts = append(opts, filter.WithPageRange(f.PageRange.First, f.PageRange.Last))
	}
	if len(f.FileTypes) > 0 {
		opts = append(opts, filter.WithFileTypes(f.FileTypes...))
	}
	if len(f.Tags) > 0 {
		opts = append(opts, filter.WithTags(f.Tags...))
	}
	if len(f.Folders) > 0 {
		opts = append(opts, filter.WithFolders(f.Folders...))
	}
	if len(f.FileNames) > 0 {
		opts = append(opts, filter.WithFileNames(f.FileNames...))
	}
	return filter.New(opts...)
}

func fromResults(results []result.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = SearchResult{
			FileName:     r.FileName(),
			Page:         r.Page(),
			Text:         r.Text(),
			Score:        r.NormalizedScore(),
			Origin:       string(r.Origin()),
			MatchedTerms: r.MatchedTerms(),
			SimilarTerms: r.SimilarTerms(),
		}
	}
	return out
}
