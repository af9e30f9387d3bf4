package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talentsearch/internal/config"
	"github.com/kailas-cloud/talentsearch/internal/corpus"
	"github.com/kailas-cloud/talentsearch/internal/db"
	dbRedis "github.com/kailas-cloud/talentsearch/internal/db/redis"
	"github.com/kailas-cloud/talentsearch/internal/domain"
	logpkg "github.com/kailas-cloud/talentsearch/internal/logger"
	"github.com/kailas-cloud/talentsearch/internal/metrics"
	candidaterepo "github.com/kailas-cloud/talentsearch/internal/repository/candidate"
	"github.com/kailas-cloud/talentsearch/internal/repository/embcache"
	"github.com/kailas-cloud/talentsearch/internal/repository/memory"
	"github.com/kailas-cloud/talentsearch/internal/repository/resultcache"
	"github.com/kailas-cloud/talentsearch/internal/repository/statscache"
	"github.com/kailas-cloud/talentsearch/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/talentsearch/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/talentsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/talentsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/talentsearch/internal/usecase/health"
	"github.com/kailas-cloud/talentsearch/internal/usecase/parser"
	searchuc "github.com/kailas-cloud/talentsearch/internal/usecase/search"
	"github.com/kailas-cloud/talentsearch/internal/version"
	"github.com/kailas-cloud/talentsearch/internal/vocabulary"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("failed to load .env: " + err.Error())
	}

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

	logger.Info("Starting talentsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("semantic_search", cfg.Embedding.Enabled()),
		zap.Bool("enhancement", cfg.Enhancement.Enabled),
	)

	vocab := vocabulary.Default()
	if cfg.Vocabulary.Path != "" {
		vocab, err = vocabulary.Load(cfg.Vocabulary.Path)
		if err != nil {
			logger.Fatal("Failed to load vocabulary", zap.Error(err))
		}
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	deps := searchuc.Deps{
		Parser:     parser.New(vocab),
		Vector:     vector.Noop{},
		Vocabulary: vocab,
		Logger:     logger,
	}
	var (
		dbPinger        healthuc.DBPinger
		embeddingHealth healthuc.ProviderChecker
	)

	ctx := context.Background()
	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		// Wait for database to be ready
		if err := store.WaitForReady(ctx, config.Seconds(cfg.Database.ReadinessTimeout)); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))

		repo := candidaterepo.New(store, vocab, logger)
		deps.Index = repo
		deps.Stats = statscache.New(repo, cfg.Search.StatsCacheSize, config.Seconds(cfg.Search.StatsCacheTTLSec))
		deps.Cache = resultcache.NewRedis(
			store, config.Seconds(cfg.Search.ResultCacheTTLSec), metrics.ResultCacheTotal, logger,
		)
		dbPinger = store

		if cfg.Embedding.Enabled() {
			base := newProviderEmbedder(cfg.Embedding, logger)
			deps.Vector = vector.New(buildQueryEmbedder(base, cfg.Embedding, store, logger), repo)
			embeddingHealth = base
			logger.Info("Query embedder created",
				zap.String("provider", cfg.Embedding.Provider),
				zap.String("model", cfg.Embedding.Model),
				zap.Int("dimensions", cfg.Embedding.Dimensions),
			)
		}
	case config.DriverMemory:
		corp, err := corpus.Load(cfg.Corpus.Path, cfg.Corpus.Scope)
		if err != nil {
			logger.Fatal("Failed to load corpus", zap.Error(err))
		}
		idx := memory.New(vocab)
		idx.Add(corp.Scope, corp.Candidates...)
		deps.Index = idx
		deps.Stats = idx
		deps.Cache = resultcache.NewMemory(
			cfg.Search.ResultCacheSize, config.Seconds(cfg.Search.ResultCacheTTLSec), metrics.ResultCacheTotal,
		)
		logger.Info("Loaded in-memory corpus",
			zap.String("path", cfg.Corpus.Path),
			zap.String("scope", corp.Scope),
			zap.Int("candidates", len(corp.Candidates)),
		)
	}

	// Pass nil interface (not typed nil pointer!) if enhancement is off.
	var enhancementHealth healthuc.ProviderChecker
	if cfg.Enhancement.Enabled {
		explainer := openaiTransport.NewExplainer(&openaiTransport.ExplainerConfig{
			APIKey:      cfg.Enhancement.APIKey,
			BaseURL:     cfg.Enhancement.BaseURL,
			Model:       cfg.Enhancement.Model,
			MaxTokens:   cfg.Enhancement.MaxTokens,
			Temperature: cfg.Enhancement.Temperature,
			Logger:      logger,
		})
		deps.Enhancer = explainer
		enhancementHealth = explainer
	}

	searchSvc, err := searchuc.New(deps, searchuc.Config{
		InstantTimeout:     config.Duration(cfg.Search.InstantTimeoutMs),
		EnhancedTimeout:    config.Duration(cfg.Search.EnhancedTimeoutMs),
		IntelligentTimeout: config.Duration(cfg.Search.IntelligentTimeoutMs),
		CandidatePool:      cfg.Search.CandidatePool,
		CacheTopN:          cfg.Search.ResultCacheTopN,
		EnhanceWorkers:     cfg.Enhancement.Workers,
	})
	if err != nil {
		logger.Fatal("Failed to create search service", zap.Error(err))
	}
	defer searchSvc.Close()

	healthSvc := healthuc.New(dbPinger, embeddingHealth, enhancementHealth)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(cfg.HTTP.WriteTimeoutSec),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newProviderEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) *openaiTransport.Embedder {
	return openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})
}

// buildQueryEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildQueryEmbedder(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	store db.KVStore,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = embcache.New(
		base, store, cfg.Model, config.Seconds(cfg.CacheTTLSec), metrics.EmbeddingCacheTotal, logger,
	)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, 0, logger)

	// Instruction prefix is outermost, so the cache key includes it.
	if cfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}
	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
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

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("user_scope", r.Header.Get(chiTransport.UserScopeHeader)),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.Bool("client_gone", r.Context().Err() != nil),
			)
		})
	}
}
