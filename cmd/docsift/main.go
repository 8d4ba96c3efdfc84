package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/docsift/docsift/internal/config"
	dbRedis "github.com/docsift/docsift/internal/db/redis"
	"github.com/docsift/docsift/internal/domain"
	logpkg "github.com/docsift/docsift/internal/logger"
	"github.com/docsift/docsift/internal/metrics"
	contentrepo "github.com/docsift/docsift/internal/repository/content"
	"github.com/docsift/docsift/internal/repository/embcache"
	historyrepo "github.com/docsift/docsift/internal/repository/history"
	"github.com/docsift/docsift/internal/repository/termcache"
	chiTransport "github.com/docsift/docsift/internal/transport/chi"
	openaiTransport "github.com/docsift/docsift/internal/transport/openai"
	historyuc "github.com/docsift/docsift/internal/usecase/history"
	keyworduc "github.com/docsift/docsift/internal/usecase/keyword"
	searchuc "github.com/docsift/docsift/internal/usecase/search"
	vectoruc "github.com/docsift/docsift/internal/usecase/vector"
	"github.com/docsift/docsift/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsift API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Embedder chain: OpenAI -> Cached
	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	if cfg.Embedding.CacheTTL > 0 {
		embedder = embcache.New(
			embedder, store, cfg.Database.KeyPrefix,
			time.Duration(cfg.Embedding.CacheTTL)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Expander chain: OpenAI completion -> LLM expander -> Cached
	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Logger:  logger,
	})
	var expander keyworduc.Expander = keyworduc.NewExpander(completer, cfg.Search.SynonymCount, logger)
	if cfg.Search.SynonymCacheTTL > 0 {
		expander = termcache.New(
			expander, store, cfg.Database.KeyPrefix,
			time.Duration(cfg.Search.SynonymCacheTTL)*time.Second, logger,
		)
	}

	// Repositories
	contentRepo := contentrepo.New(store, contentrepo.Config{
		KeyPrefix: cfg.Database.KeyPrefix,
		VectorDim: cfg.Embedding.Dimensions,
	}, logger)
	if err := contentRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure chunk index", zap.Error(err))
	}
	historyRepo := historyrepo.New(store, cfg.Database.KeyPrefix, cfg.Search.HistoryLimit, logger)

	// Use cases
	retriever := vectoruc.New(embedder, contentRepo, cfg.Search.SimilarityThreshold, logger)
	matcher := keyworduc.New(expander, logger)
	searchSvc := searchuc.New(contentRepo, retriever, matcher, historyRepo, logger)
	historySvc := historyuc.New(historyRepo)

	// HTTP server
	server := chiTransport.NewServer(searchSvc, historySvc, contentRepo, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Let in-flight history writes finish before the store closes.
	searchSvc.Drain()

	logger.Info("Server stopped gracefully")
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One canonical line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a
// plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
