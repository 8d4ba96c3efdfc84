package mode

// Mode selects the document scope of a search.
type Mode string

// Search mode constants.
const (
	// All searches across every document in the corpus.
	All Mode = "all"
	// Single restricts the search to one target document.
	Single Mode = "single"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == All || m == Single
}
