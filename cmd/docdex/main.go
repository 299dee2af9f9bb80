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

	"github.com/docdex-ai/docdex/internal/cache"
	"github.com/docdex-ai/docdex/internal/config"
	dbRedis "github.com/docdex-ai/docdex/internal/db/redis"
	logpkg "github.com/docdex-ai/docdex/internal/logger"
	"github.com/docdex-ai/docdex/internal/metrics"
	historyrepo "github.com/docdex-ai/docdex/internal/repository/history"
	"github.com/docdex-ai/docdex/internal/repository/memstore"
	chiTransport "github.com/docdex-ai/docdex/internal/transport/chi"
	openaiEmb "github.com/docdex-ai/docdex/internal/transport/openai"
	"github.com/docdex-ai/docdex/internal/usecase/analytics"
	"github.com/docdex-ai/docdex/internal/usecase/fuse"
	healthuc "github.com/docdex-ai/docdex/internal/usecase/health"
	"github.com/docdex-ai/docdex/internal/usecase/score"
	searchuc "github.com/docdex-ai/docdex/internal/usecase/search"
	"github.com/docdex-ai/docdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docdex API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterHTTPMetrics()

	// Optional Redis connection for search history. The engine itself keeps
	// chunks in memory; history is the only persisted state.
	ctx := context.Background()
	var (
		dbStore *dbRedis.Store
		history *historyrepo.Store
	)
	if len(cfg.Database.Addrs) > 0 {
		dbStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer dbStore.Close()

		if err := dbStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		history = historyrepo.New(dbStore, cfg.Database.HistorySize)
	}

	// Chunk store and scoring pool
	store := memstore.New()

	pool, err := score.NewPool(cfg.Scoring.PoolSize)
	if err != nil {
		logger.Fatal("Failed to create scoring pool", zap.Error(err))
	}
	defer pool.Release()

	// Search engine
	fuseCfg := fuse.Config{
		VectorWeight:  cfg.Search.VectorWeight,
		KeywordWeight: cfg.Search.KeywordWeight,
		Normalization: fuse.Normalization(cfg.Search.Normalization),
	}
	searchCache := cache.New(
		cfg.Cache.MaxEntries,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.SearchCacheTotal,
		logger,
	)
	searchSvc := searchuc.New(store, searchCache, pool, fuseCfg, logger)
	analyticsSvc := analytics.New()

	// Optional query embedder for text-only vector searches
	var embedder chiTransport.Embedder
	if cfg.Embedding.APIKey != "" {
		embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		logger.Info("Query embedder created",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	// Health service: dbStore is optional, pass nil interface when absent
	var pinger healthuc.DBPinger
	if dbStore != nil {
		pinger = dbStore
	}
	healthSvc := healthuc.New(pinger, store)

	server := chiTransport.NewServer(
		searchSvc, analyticsSvc, store, healthSvc, history, embedder,
		chiTransport.Defaults{
			TopN:      cfg.Search.DefaultTopN,
			Threshold: cfg.Search.DefaultThreshold,
		},
		logger,
	)

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

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

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
