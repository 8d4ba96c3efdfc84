// Package chi is the HTTP transport: request decoding, domain error mapping
// and JSON responses over a go-chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/domain"
	historyuc "github.com/docsift/docsift/internal/usecase/history"
	searchuc "github.com/docsift/docsift/internal/usecase/search"
)

// Documents is the document management surface of the content repository.
type Documents interface {
	PutDocument(ctx context.Context, meta *domain.DocumentMeta, chunks []domain.Chunk) error
	DeleteDocument(ctx context.Context, fileName string) error
	ListDocuments(ctx context.Context) ([]domain.DocumentMeta, error)
}

// HealthChecker reports dependency availability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	search        *searchuc.Service
	history       *historyuc.Service
	documents     Documents
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	history *historyuc.Service,
	documents Documents,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		history:   history,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, "invalid_query"),
		sentinelHandler(domain.ErrUnsupportedSearchType, http.StatusBadRequest, "unsupported_search_type"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, "vector_dim_mismatch"),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, "completion_provider_error"),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/search/extracts", s.handleSearchExtracts)
		r.Get("/history", s.handleHistory)
		r.Get("/documents", s.handleListDocuments)
		r.Put("/documents/{fileName}", s.handlePutDocument)
		r.Delete("/documents/{fileName}", s.handleDeleteDocument)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// handleSearch handles POST /api/v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := queryFromRequest(&req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(resp))
}

// handleSearchExtracts handles POST /api/v1/search/extracts: containment
// search over extracted tables and figure captions.
func (s *Server) handleSearchExtracts(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := queryFromRequest(&req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.SearchTablesFigures(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]resultItem, len(results))
	for i := range results {
		items[i] = resultToItem(&results[i])
	}
	writeJSON(w, http.StatusOK, extractsResponse{Results: items, Total: len(items)})
}

// handleHistory handles GET /api/v1/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	dtos := make([]historyEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = historyEntryToDTO(&entries[i])
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: dtos, Total: len(dtos)})
}

// handleListDocuments handles GET /api/v1/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	metas, err := s.documents.ListDocuments(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentItem, len(metas))
	for i := range metas {
		items[i] = documentToItem(&metas[i])
	}
	writeJSON(w, http.StatusOK, documentListResponse{Items: items, Total: len(items)})
}

// handlePutDocument handles PUT /api/v1/documents/{fileName}.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")
	if fileName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "file name is required")
		return
	}

	var req putDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	meta, chunks := documentFromPut(fileName, &req)
	if err := s.documents.PutDocument(r.Context(), &meta, chunks); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, documentToItem(&meta))
}

// handleDeleteDocument handles DELETE /api/v1/documents/{fileName}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")
	if err := s.documents.DeleteDocument(r.Context(), fileName); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"reason": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrUnsupportedSearchType,
		domain.ErrVectorDimMismatch,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrCompletionProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
