package docsift

import (
	"context"
	"fmt"
	"time"

	"github.com/docsift/docsift/internal/domain"
)

// Table is an extracted table attached to a chunk.
type Table struct {
	Num  int
	Data string
	BBox [4]float64
}

// Figure is an extracted figure annotation attached to a chunk.
type Figure struct {
	Num     int
	Caption string
	BBox    [4]float64
}

// Chunk is one page-level extract of a document.
type Chunk struct {
	Page      int
	Text      string
	Embedding []float32
	Tables    []Table
	Figures   []Figure
}

// Document is an ingested document with its chunks.
type Document struct {
	FileName   string
	FileType   string
	UploadedAt time.Time // zero means now
	PageCount  int
	Tags       []string
	Folder     string
	Chunks     []Chunk
}

// DocumentInfo describes a stored document.
type DocumentInfo struct {
	FileName   string
	FileType   string
	UploadedAt time.Time
	PageCount  int
	Tags       []string
	Folder     string
}

// HistoryEntry is one recorded search.
type HistoryEntry struct {
	ID             string
	Query          string
	Mode           string
	TargetDocument string
	Filters        string
	Timestamp      time.Time
	ResultCount    int
}

// AddDocument stores a document and its chunks, replacing any previous
// version with the same file name.
func (c *Client) AddDocument(ctx context.Context, doc *Document) error {
	uploadedAt := doc.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	meta := domain.DocumentMeta{
		FileName:   doc.FileName,
		UploadedAt: uploadedAt.UnixMilli(),
		FileType:   doc.FileType,
		PageCount:  doc.PageCount,
		Tags:       doc.Tags,
		Folder:     doc.Folder,
	}

	chunks := make([]domain.Chunk, len(doc.Chunks))
	for i, ch := range doc.Chunks {
		chunk := domain.Chunk{
			FileName:  doc.FileName,
			Page:      ch.Page,
			Text:      ch.Text,
			Embedding: ch.Embedding,
		}
		for _, tb := range ch.Tables {
			chunk.Tables = append(chunk.Tables, domain.Table{Num: tb.Num, Data: tb.Data, BBox: tb.BBox})
		}
		for _, fg := range ch.Figures {
			chunk.Figures = append(chunk.Figures, domain.Figure{Num: fg.Num, Caption: fg.Caption, BBox: fg.BBox})
		}
		chunks[i] = chunk
	}

	if err := c.content.PutDocument(ctx, &meta, chunks); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and all of its chunks.
func (c *Client) DeleteDocument(ctx context.Context, fileName string) error {
	if err := c.content.DeleteDocument(ctx, fileName); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// ListDocuments returns all stored documents sorted by file name.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	metas, err := c.content.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	infos := make([]DocumentInfo, len(metas))
	for i, m := range metas {
		infos[i] = DocumentInfo{
			FileName:   m.FileName,
			FileType:   m.FileType,
			UploadedAt: time.UnixMilli(m.UploadedAt),
			PageCount:  m.PageCount,
			Tags:       m.Tags,
			Folder:     m.Folder,
		}
	}
	return infos, nil
}

// History returns up to n recorded searches, newest first.
func (c *Client) History(ctx context.Context, n int) ([]HistoryEntry, error) {
	entries, err := c.historySvc.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			ID:             e.ID,
			Query:          e.Query,
			Mode:           e.Mode,
			TargetDocument: e.TargetDocument,
			Filters:        e.Filters,
			Timestamp:      time.UnixMilli(e.Timestamp),
			ResultCount:    e.ResultCount,
		}
	}
	return out, nil
}
