// Package content persists the ingested chunk corpus and document metadata,
// and exposes the filtered views the search core reads.
package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/db"
	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
)

// store is the consumer interface for the content repository (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Config holds the content repository settings.
type Config struct {
	KeyPrefix string
	IndexName string
	VectorDim int
}

// DefaultIndexName is used when Config.IndexName is empty.
const DefaultIndexName = "docsift_chunks_idx"

// Repository stores documents as JSON values and chunks as hashes, with an
// FT vector index over the chunk hashes.
type Repository struct {
	store     store
	keyPrefix string
	indexName string
	vectorDim int
	logger    *zap.Logger
}

// New creates a content repository.
func New(s store, cfg Config, logger *zap.Logger) *Repository {
	indexName := cfg.IndexName
	if indexName == "" {
		indexName = DefaultIndexName
	}
	return &Repository{
		store:     s,
		keyPrefix: cfg.KeyPrefix,
		indexName: indexName,
		vectorDim: cfg.VectorDim,
		logger:    logger,
	}
}

// IndexName returns the FT index name used for KNN search.
func (r *Repository) IndexName() string { return r.indexName }

// EnsureIndex creates the chunk vector index if it does not exist.
func (r *Repository) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        r.indexName,
		StorageType: db.StorageHash,
		Prefixes:    []string{r.chunkPrefix()},
		Fields: []db.IndexField{
			{Name: fieldFileName, Type: db.IndexFieldTag, TagSeparator: ","},
			{Name: fieldPage, Type: db.IndexFieldNumeric},
			{
				Name:           fieldEmbedding,
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorHNSW,
				VectorDim:      r.vectorDim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}

	r.logger.Info("Created chunk vector index",
		zap.String("index", r.indexName), zap.Int("dim", r.vectorDim))
	return nil
}

// PutDocument stores the document metadata and its chunks. Chunks with an
// embedding length different from the configured dimension are rejected.
func (r *Repository) PutDocument(ctx context.Context, meta *domain.DocumentMeta, chunks []domain.Chunk) error {
	if meta.FileName == "" {
		return fmt.Errorf("document file name is empty: %w", domain.ErrInvalidQuery)
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if r.vectorDim > 0 && len(c.Embedding) != r.vectorDim {
			return fmt.Errorf("chunk %s page %d: embedding dim %d, want %d: %w",
				c.FileName, c.Page, len(c.Embedding), r.vectorDim, domain.ErrVectorDimMismatch)
		}
		fields, err := chunkToFields(c)
		if err != nil {
			return err
		}
		items = append(items, db.HashSetItem{Key: r.chunkKey(c.FileName, c.Page), Fields: fields})
	}

	data, err := encodeMeta(meta)
	if err != nil {
		return fmt.Errorf("encode document meta: %w", err)
	}
	if err := r.store.Set(ctx, r.docKey(meta.FileName), data); err != nil {
		return fmt.Errorf("store document meta: %w", err)
	}

	if len(items) > 0 {
		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("store chunks: %w", err)
		}
	}

	r.logger.Info("Stored document",
		zap.String("file_name", meta.FileName), zap.Int("chunks", len(chunks)))
	return nil
}

// GetDocument returns the metadata for a single document.
func (r *Repository) GetDocument(ctx context.Context, fileName string) (domain.DocumentMeta, error) {
	data, err := r.store.Get(ctx, r.docKey(fileName))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.DocumentMeta{}, fmt.Errorf("document %q: %w", fileName, domain.ErrDocumentNotFound)
		}
		return domain.DocumentMeta{}, fmt.Errorf("get document meta: %w", err)
	}
	return decodeMeta(data)
}

// DeleteDocument removes the document metadata and all of its chunks.
// Deleting an unknown document returns ErrDocumentNotFound.
func (r *Repository) DeleteDocument(ctx context.Context, fileName string) error {
	if _, err := r.GetDocument(ctx, fileName); err != nil {
		return err
	}

	keys, err := r.store.Scan(ctx, r.chunkKey(fileName, -1))
	if err != nil {
		return fmt.Errorf("scan chunks: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("delete chunk %s: %w", key, err)
		}
	}

	if err := r.store.Del(ctx, r.docKey(fileName)); err != nil {
		return fmt.Errorf("delete document meta: %w", err)
	}

	r.logger.Info("Deleted document",
		zap.String("file_name", fileName), zap.Int("chunks", len(keys)))
	return nil
}

// ListDocuments returns all document metadata sorted by file name.
func (r *Repository) ListDocuments(ctx context.Context) ([]domain.DocumentMeta, error) {
	keys, err := r.store.Scan(ctx, r.docPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	metas := make([]domain.DocumentMeta, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between scan and get
			}
			return nil, fmt.Errorf("get document meta %s: %w", key, err)
		}
		meta, err := decodeMeta(data)
		if err != nil {
			r.logger.Warn("Skipping malformed document meta", zap.String("key", key), zap.Error(err))
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool { return metas[i].FileName < metas[j].FileName })
	return metas, nil
}

// FilteredChunks returns all chunks whose documents match the document-level
// constraints and whose pages satisfy the page constraint. The result is
// sorted by (file name, page) so downstream ordering is deterministic.
func (r *Repository) FilteredChunks(ctx context.Context, f filter.Filter) ([]domain.Chunk, error) {
	metas, err := r.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	for i := range metas {
		if !metaMatches(&metas[i], f) {
			continue
		}
		chunkKeys, err := r.store.Scan(ctx, r.chunkKey(metas[i].FileName, -1))
		if err != nil {
			return nil, fmt.Errorf("scan chunks for %s: %w", metas[i].FileName, err)
		}
		keys = append(keys, chunkKeys...)
	}

	if len(keys) == 0 {
		return []domain.Chunk{}, nil
	}

	fieldMaps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(fieldMaps))
	for i, fields := range fieldMaps {
		if len(fields) == 0 {
			continue // deleted between scan and load
		}
		c, err := chunkFromFields(fields)
		if err != nil {
			r.logger.Warn("Skipping malformed chunk", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		if !f.AllowsPage(c.Page) {
			continue
		}
		chunks = append(chunks, c)
	}

	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].FileName != chunks[j].FileName {
			return chunks[i].FileName < chunks[j].FileName
		}
		return chunks[i].Page < chunks[j].Page
	})
	return chunks, nil
}

// SearchKNN runs an index-accelerated nearest-neighbor query and returns
// similarity scores keyed by chunk identity.
func (r *Repository) SearchKNN(ctx context.Context, vector []float32, k int, fileNames []string) (map[domain.Key]float64, error) {
	if r.vectorDim > 0 && len(vector) != r.vectorDim {
		return nil, fmt.Errorf("query vector dim %d, want %d: %w",
			len(vector), r.vectorDim, domain.ErrVectorDimMismatch)
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       vector,
		K:            k,
		FileNames:    fileNames,
		ReturnFields: []string{fieldFileName, fieldPage, db.KNNScoreField},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	scores := make(map[domain.Key]float64, len(result.Entries))
	for _, entry := range result.Entries {
		page, err := strconv.Atoi(entry.Fields[fieldPage])
		if err != nil {
			r.logger.Warn("Skipping knn hit with bad page field",
				zap.String("key", entry.Key), zap.String("page", entry.Fields[fieldPage]))
			continue
		}
		key := domain.Key{FileName: entry.Fields[fieldFileName], Page: page}
		scores[key] = entry.Score
	}
	return scores, nil
}

func (r *Repository) docPrefix() string   { return r.keyPrefix + "doc:" }
func (r *Repository) chunkPrefix() string { return r.keyPrefix + "chunk:" }

func (r *Repository) docKey(fileName string) string {
	return r.docPrefix() + fileName
}

// chunkKey builds the key for one chunk, or the scan pattern for all chunks
// of a document when page is negative.
func (r *Repository) chunkKey(fileName string, page int) string {
	if page < 0 {
		return r.chunkPrefix() + fileName + ":*"
	}
	return r.chunkPrefix() + fileName + ":" + strconv.Itoa(page)
}

func metaMatches(meta *domain.DocumentMeta, f filter.Filter) bool {
	if dr := f.DateRange(); dr != nil {
		if meta.UploadedAt < dr.Start || meta.UploadedAt > dr.End {
			return false
		}
	}
	if types := f.FileTypes(); len(types) > 0 && !containsFold(types, meta.FileType) {
		return false
	}
	if names := f.FileNames(); len(names) > 0 && !contains(names, meta.FileName) {
		return false
	}
	if folders := f.Folders(); len(folders) > 0 && !contains(folders, meta.Folder) {
		return false
	}
	if tags := f.Tags(); len(tags) > 0 && !anyOverlap(tags, meta.Tags) {
		return false
	}
	return true
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func anyOverlap(want, have []string) bool {
	for _, w := range want {
		if contains(have, w) {
			return true
		}
	}
	return false
}
