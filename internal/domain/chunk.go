package domain

// Chunk is a retrievable unit of document content: one page-level extract
// with its embedding. Chunks are produced by the ingestion pipeline and are
// read-only to the search core.
type Chunk struct {
	FileName  string
	Page      int
	Text      string
	Embedding []float32
	Tables    []Table
	Figures   []Figure
}

// Key identifies a chunk for deduplication purposes.
type Key struct {
	FileName string
	Page     int
}

// Key returns the chunk's dedup identity.
func (c *Chunk) Key() Key {
	return Key{FileName: c.FileName, Page: c.Page}
}

// Table is an extracted table payload attached to a chunk.
type Table struct {
	Num  int
	Data string // serialized cell data, searched by containment
	BBox [4]float64
}

// Figure is an extracted figure annotation attached to a chunk.
type Figure struct {
	Num     int
	Caption string
	BBox    [4]float64
}

// DocumentMeta describes an ingested document for filtering purposes.
type DocumentMeta struct {
	FileName   string
	UploadedAt int64 // unix millis
	FileType   string
	PageCount  int
	Tags       []string
	Folder     string
}
