package search

import (
	"context"
	"sync"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/result"
)

type fakeContent struct {
	docs       map[string]domain.DocumentMeta
	chunks     []domain.Chunk
	chunksErr  error
	lastFilter filter.Filter
}

func (f *fakeContent) GetDocument(_ context.Context, fileName string) (domain.DocumentMeta, error) {
	meta, ok := f.docs[fileName]
	if !ok {
		return domain.DocumentMeta{}, domain.ErrDocumentNotFound
	}
	return meta, nil
}

func (f *fakeContent) FilteredChunks(_ context.Context, fl filter.Filter) ([]domain.Chunk, error) {
	f.lastFilter = fl
	if f.chunksErr != nil {
		return nil, f.chunksErr
	}
	// Honors file-name and page constraints so mode forcing is observable.
	var out []domain.Chunk
	for _, c := range f.chunks {
		if names := fl.FileNames(); len(names) > 0 && !containsName(names, c.FileName) {
			continue
		}
		if !fl.AllowsPage(c.Page) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

type fakeVector struct {
	results []result.Result
	err     error
	calls   int
	gotN    int
	gotLen  int
}

func (f *fakeVector) Search(
	_ context.Context, chunks []domain.Chunk, _ string, topN int, _ float64,
) ([]result.Result, error) {
	f.calls++
	f.gotN = topN
	f.gotLen = len(chunks)
	return f.results, f.err
}

type fakeKeyword struct {
	results   []result.Result
	err       error
	calls     int
	gotExpand bool
}

func (f *fakeKeyword) Search(
	_ context.Context, _ []domain.Chunk, _ string, _ int, expandSynonyms bool,
) ([]result.Result, error) {
	f.calls++
	f.gotExpand = expandSynonyms
	return f.results, f.err
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
}

func (f *fakeHistory) Append(_ context.Context, entry *domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistory) all() []domain.HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HistoryEntry(nil), f.entries...)
}
