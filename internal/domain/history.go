package domain

// HistoryEntry is a write-only record of one executed search.
type HistoryEntry struct {
	ID             string
	Query          string
	Mode           string
	TargetDocument string
	Filters        string // serialized filter set, opaque to the core
	Timestamp      int64  // unix millis
	ResultCount    int
}
