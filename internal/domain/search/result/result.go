package result

// Origin tags which search branch produced a result.
type Origin string

// Result origin constants.
const (
	OriginVector  Origin = "vector"
	OriginKeyword Origin = "keyword"
	OriginTable   Origin = "table"
	OriginFigure  Origin = "figure"
)

// Result is a single search hit: a chunk reference plus its relevance
// score and match annotations. Produced transiently per search call.
type Result struct {
	fileName     string
	page         int
	text         string
	score        float64
	origin       Origin
	matchedTerms []string
	similarTerms []string
}

// New creates a search result.
func New(fileName string, page int, text string, score float64, origin Origin) Result {
	return Result{fileName: fileName, page: page, text: text, score: score, origin: origin}
}

// NewKeyword creates a keyword search result with term annotations.
// matched lists terms literally found in the chunk, similar lists the
// synonym-only terms that matched.
func NewKeyword(fileName string, page int, text string, score float64, matched, similar []string) Result {
	return Result{
		fileName:     fileName,
		page:         page,
		text:         text,
		score:        score,
		origin:       OriginKeyword,
		matchedTerms: matched,
		similarTerms: similar,
	}
}

// FileName returns the owning document's file name.
func (r *Result) FileName() string { return r.fileName }

// Page returns the chunk's page number.
func (r *Result) Page() int { return r.page }

// Text returns the chunk text.
func (r *Result) Text() string { return r.text }

// Score returns the raw branch score.
func (r *Result) Score() float64 { return r.score }

// Origin returns the branch that produced this result.
func (r *Result) Origin() Origin { return r.origin }

// MatchedTerms returns the query terms literally found in the chunk.
func (r *Result) MatchedTerms() []string { return r.matchedTerms }

// SimilarTerms returns the synonym-only terms that matched.
func (r *Result) SimilarTerms() []string { return r.similarTerms }

// NormalizedScore returns the score clamped to [0, 1].
func (r *Result) NormalizedScore() float64 {
	if r.score < 0 {
		return 0
	}
	if r.score > 1 {
		return 1
	}
	return r.score
}
