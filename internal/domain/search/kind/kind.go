package kind

// Kind is the search strategy.
type Kind string

// Search type constants.
const (
	// Hybrid combines vector and keyword search.
	Hybrid  Kind = "hybrid"
	Vector  Kind = "vector"
	Keyword Kind = "keyword"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Hybrid || k == Vector || k == Keyword
}
