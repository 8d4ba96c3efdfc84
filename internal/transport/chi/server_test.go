package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
	"github.com/docsift/docsift/internal/domain/search/filter"
	"github.com/docsift/docsift/internal/domain/search/result"
	historyuc "github.com/docsift/docsift/internal/usecase/history"
	searchuc "github.com/docsift/docsift/internal/usecase/search"
)

type testContent struct {
	docs   map[string]domain.DocumentMeta
	chunks []domain.Chunk
}

func (c *testContent) GetDocument(_ context.Context, fileName string) (domain.DocumentMeta, error) {
	meta, ok := c.docs[fileName]
	if !ok {
		return domain.DocumentMeta{}, domain.ErrDocumentNotFound
	}
	return meta, nil
}

func (c *testContent) FilteredChunks(_ context.Context, _ filter.Filter) ([]domain.Chunk, error) {
	return c.chunks, nil
}

type testVector struct {
	results []result.Result
	err     error
}

func (v *testVector) Search(
	_ context.Context, _ []domain.Chunk, _ string, _ int, _ float64,
) ([]result.Result, error) {
	return v.results, v.err
}

type testKeyword struct {
	results []result.Result
}

func (k *testKeyword) Search(
	_ context.Context, _ []domain.Chunk, _ string, _ int, _ bool,
) ([]result.Result, error) {
	return k.results, nil
}

type testHistoryReader struct {
	entries []domain.HistoryEntry
}

func (r *testHistoryReader) Recent(_ context.Context, _ int) ([]domain.HistoryEntry, error) {
	return r.entries, nil
}

type testDocuments struct {
	metas   []domain.DocumentMeta
	putErr  error
	deleted []string
}

func (d *testDocuments) PutDocument(_ context.Context, meta *domain.DocumentMeta, _ []domain.Chunk) error {
	if d.putErr != nil {
		return d.putErr
	}
	d.metas = append(d.metas, *meta)
	return nil
}

func (d *testDocuments) DeleteDocument(_ context.Context, fileName string) error {
	for _, m := range d.metas {
		if m.FileName == fileName {
			d.deleted = append(d.deleted, fileName)
			return nil
		}
	}
	return domain.ErrDocumentNotFound
}

func (d *testDocuments) ListDocuments(_ context.Context) ([]domain.DocumentMeta, error) {
	return d.metas, nil
}

type testHealth struct {
	err error
}

func (h *testHealth) Ping(_ context.Context) error { return h.err }

type serverFixture struct {
	router    *gochi.Mux
	documents *testDocuments
	health    *testHealth
	search    *searchuc.Service
}

func newFixture(content *testContent, vec *testVector, kw *testKeyword) *serverFixture {
	searchSvc := searchuc.New(content, vec, kw, nil, zap.NewNop())
	historySvc := historyuc.New(&testHistoryReader{entries: []domain.HistoryEntry{
		{ID: "h1", Query: "older", Mode: "all", Timestamp: 100, ResultCount: 2},
	}})
	docs := &testDocuments{metas: []domain.DocumentMeta{{FileName: "a.pdf", FileType: "pdf"}}}
	health := &testHealth{}

	server := NewServer(searchSvc, historySvc, docs, health, zap.NewNop())
	r := gochi.NewRouter()
	server.RegisterRoutes(r)

	return &serverFixture{router: r, documents: docs, health: health, search: searchSvc}
}

func defaultFixture() *serverFixture {
	content := &testContent{
		docs:   map[string]domain.DocumentMeta{"a.pdf": {FileName: "a.pdf"}},
		chunks: []domain.Chunk{{FileName: "a.pdf", Page: 1, Text: "invoice total"}},
	}
	vec := &testVector{results: []result.Result{
		result.New("a.pdf", 1, "invoice total", 0.92, result.OriginVector),
	}}
	kw := &testKeyword{results: []result.Result{
		result.NewKeyword("a.pdf", 2, "invoice copy", 0.5, []string{"invoice"}, nil),
	}}
	return newFixture(content, vec, kw)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleSearch_Success(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "POST", "/api/v1/search", `{"query": "invoice"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", resp)
	}
	top := resp.Results[0]
	if top.FileName != "a.pdf" || top.Page != 1 || top.Origin != "vector" {
		t.Errorf("unexpected top result: %+v", top)
	}
	if top.Score != 0.92 {
		t.Errorf("expected normalized score 0.92, got %v", top.Score)
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "POST", "/api/v1/search", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "POST", "/api/v1/search", `{"query": ""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "invalid_query" {
		t.Errorf("error code: got %s, want invalid_query", errResp.Code)
	}
}

func TestHandleSearch_UnsupportedSearchType(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "POST", "/api/v1/search",
		`{"query": "q", "search_type": "regex"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "unsupported_search_type" {
		t.Errorf("error code: got %s, want unsupported_search_type", errResp.Code)
	}
}

func TestHandleSearch_SingleModeUnknownDocument_404(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "POST", "/api/v1/search",
		`{"query": "q", "mode": "single", "target_document": "missing.pdf"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleSearch_EmbeddingProviderError_502(t *testing.T) {
	content := &testContent{chunks: []domain.Chunk{{FileName: "a.pdf", Page: 1}}}
	vec := &testVector{err: domain.ErrEmbeddingProviderError}
	fx := newFixture(content, vec, &testKeyword{})

	rr := doRequest(t, fx.router, "POST", "/api/v1/search",
		`{"query": "q", "search_type": "vector"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("got %d, want 502: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleHistory(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "GET", "/api/v1/history?limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}

	var resp historyResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Entries[0].ID != "h1" {
		t.Errorf("unexpected history: %+v", resp)
	}
}

func TestHandleHistory_BadLimit(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "GET", "/api/v1/history?limit=abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
}

func TestHandleListDocuments(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "GET", "/api/v1/documents", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}

	var resp documentListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].FileName != "a.pdf" {
		t.Errorf("unexpected documents: %+v", resp)
	}
}

func TestHandlePutDocument(t *testing.T) {
	fx := defaultFixture()

	body := `{"file_type": "pdf", "page_count": 1, "chunks": [{"page": 1, "text": "hello", "embedding": [0.1, 0.2]}]}`
	rr := doRequest(t, fx.router, "PUT", "/api/v1/documents/new.pdf", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201: %s", rr.Code, rr.Body.String())
	}

	last := fx.documents.metas[len(fx.documents.metas)-1]
	if last.FileName != "new.pdf" || last.FileType != "pdf" {
		t.Errorf("document not stored: %+v", last)
	}
}

func TestHandlePutDocument_DimMismatch_400(t *testing.T) {
	fx := defaultFixture()
	fx.documents.putErr = domain.ErrVectorDimMismatch

	body := `{"chunks": [{"page": 1, "text": "hello", "embedding": [0.1]}]}`
	rr := doRequest(t, fx.router, "PUT", "/api/v1/documents/new.pdf", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestHandleDeleteDocument(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "DELETE", "/api/v1/documents/a.pdf", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("got %d, want 204", rr.Code)
	}
	if len(fx.documents.deleted) != 1 || fx.documents.deleted[0] != "a.pdf" {
		t.Errorf("delete not forwarded: %v", fx.documents.deleted)
	}
}

func TestHandleDeleteDocument_NotFound(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "DELETE", "/api/v1/documents/missing.pdf", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rr.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	fx := defaultFixture()

	rr := doRequest(t, fx.router, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: got %d, want 200", rr.Code)
	}

	fx.health.err = errors.New("redis down")
	rr = doRequest(t, fx.router, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: got %d, want 503", rr.Code)
	}
}

func TestFiltersFromDTO_Invalid(t *testing.T) {
	_, err := filtersFromDTO(&filtersDTO{PageRange: &pageRangeDTO{First: 5, Last: 2}})
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
