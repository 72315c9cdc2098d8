package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/config"
	"github.com/kailas-cloud/blograg/internal/db"
	dbRedis "github.com/kailas-cloud/blograg/internal/db/redis"
	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/embedding"
	logpkg "github.com/kailas-cloud/blograg/internal/logger"
	"github.com/kailas-cloud/blograg/internal/metrics"
	"github.com/kailas-cloud/blograg/internal/repository/blogstore"
	"github.com/kailas-cloud/blograg/internal/repository/embcache"
	"github.com/kailas-cloud/blograg/internal/repository/vectorindex"
	chiTransport "github.com/kailas-cloud/blograg/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/blograg/internal/transport/openai"
	answeruc "github.com/kailas-cloud/blograg/internal/usecase/answer"
	assistantuc "github.com/kailas-cloud/blograg/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/blograg/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/blograg/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/blograg/internal/usecase/retrieval"
	"github.com/kailas-cloud/blograg/internal/version"
	"github.com/kailas-cloud/blograg/internal/websearch"
)

const cacheReadinessTimeout = 10 * time.Second

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

	logger.Info("Starting blograg API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_path", cfg.Storage.Path),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	// Blog store — источник истины, индекс из него восстанавливается.
	store, err := blogstore.New(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("Failed to open blog store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	// Optional Redis embedding cache. Empty addrs runs without it.
	var cacheStore db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		if err := cacheStore.WaitForReady(ctx, cacheReadinessTimeout); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Embedder chain: OpenAI -> Cached -> Gateway (local fallback).
	// Without an API key the gateway runs on the local embedder alone.
	var provider domain.Embedder
	var embHealth domain.HealthChecker
	if cfg.Embedding.APIKey != "" {
		base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   "openai",
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		embHealth = base

		provider = base
		if cacheStore != nil {
			provider = embcache.New(base, cacheStore, metrics.EmbeddingCacheTotal, logger)
		}
	} else {
		logger.Warn("No embedding API key configured, using local embedder only")
	}

	gateway := embedding.NewGateway(provider, cfg.Embedding.Dimensions, logger)

	index := vectorindex.New()

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:  cfg.Generate.APIKey,
		BaseURL: cfg.Generate.BaseURL,
		Model:   cfg.Generate.Model,
		Timeout: time.Duration(cfg.Generate.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	web := websearch.New(time.Duration(cfg.WebSearch.FetchTimeoutSec)*time.Second, logger)

	// Use case services
	retrievalSvc := retrievaluc.New(index, gateway, retrievaluc.Config{
		PrimaryThreshold:   cfg.Retrieval.PrimaryThreshold,
		SecondaryThreshold: cfg.Retrieval.SecondaryThreshold,
		Limit:              cfg.Retrieval.Limit,
	}, logger)
	answerSvc := answeruc.New(generator, web, cfg.WebSearch.MaxResults, logger)
	assistantSvc := assistantuc.New(retrievalSvc, answerSvc, logger)
	ingestSvc := ingestuc.New(store, index, gateway, cfg.Chunking.TargetSize, logger)
	healthSvc := healthuc.New(store, embHealth, index)

	// The index is in-memory and derived; rebuild it from the store on boot.
	if n, err := ingestSvc.Rebuild(ctx); err != nil {
		logger.Fatal("Failed to rebuild index", zap.Error(err))
	} else {
		logger.Info("Index rebuilt from blog store", zap.Int("chunks", n))
	}

	server := chiTransport.NewServer(assistantSvc, ingestSvc, store, healthSvc, logger)
	handler := server.Routes(wideEventMiddleware(logger))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
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
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
