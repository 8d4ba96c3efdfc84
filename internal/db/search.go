package db

// KNNScoreField is the distance attribute FT.SEARCH yields for a KNN query
// against the embedding field. Callers restricting ReturnFields must request
// it or every hit comes back unscored.
const KNNScoreField = "__embedding_score"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	FileNames    []string // optional pre-filter on the file_name TAG field
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64 // cosine similarity, clamped to [0,1]
	Fields map[string]string
}
