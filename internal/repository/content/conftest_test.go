package content

import (
	"context"
	"strings"
	"time"

	"github.com/docsift/docsift/internal/db"
)

// fakeStore is an in-memory stand-in for the redis store.
type fakeStore struct {
	kv        map[string][]byte
	hashes    map[string]map[string]string
	indexes   map[string]*db.IndexDefinition
	knnResult *db.SearchResult
	knnErr    error
	knnCalls  []*db.KNNQuery
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		kv:      make(map[string][]byte),
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	f.kv[key] = value
	return nil
}

func (f *fakeStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.kv[key] = value
	return nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	delete(f.kv, key)
	delete(f.hashes, key)
	return nil
}

func (f *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range f.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		f.hashes[item.Key] = item.Fields
	}
	return nil
}

func (f *fakeStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = f.hashes[k]
	}
	return out, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if _, ok := f.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	f.indexes[def.Name] = def
	return nil
}

func (f *fakeStore) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := f.indexes[name]
	return ok, nil
}

func (f *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.knnCalls = append(f.knnCalls, q)
	if f.knnErr != nil {
		return nil, f.knnErr
	}
	if f.knnResult != nil {
		return f.knnResult, nil
	}
	return &db.SearchResult{}, nil
}
