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

	"github.com/studylens/fuserank/internal/config"
	dbRedis "github.com/studylens/fuserank/internal/db/redis"
	"github.com/studylens/fuserank/internal/domain"
	logpkg "github.com/studylens/fuserank/internal/logger"
	"github.com/studylens/fuserank/internal/metrics"
	candidatesrepo "github.com/studylens/fuserank/internal/repository/candidates"
	itemsrepo "github.com/studylens/fuserank/internal/repository/items"
	recentrepo "github.com/studylens/fuserank/internal/repository/recent"
	chiTransport "github.com/studylens/fuserank/internal/transport/chi"
	openaiEmb "github.com/studylens/fuserank/internal/transport/openai"
	fusionuc "github.com/studylens/fuserank/internal/usecase/fusion"
	healthuc "github.com/studylens/fuserank/internal/usecase/health"
	itemuc "github.com/studylens/fuserank/internal/usecase/item"
	rankuc "github.com/studylens/fuserank/internal/usecase/rank"
	recommenduc "github.com/studylens/fuserank/internal/usecase/recommend"
	retrievaluc "github.com/studylens/fuserank/internal/usecase/retrieval"
	"github.com/studylens/fuserank/internal/version"
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

	logger.Info("Starting fuserank API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRelevanceMetrics()

	// Embedders — composition root
	textVec, ok := cfg.Embedding.Vectorizers["text"]
	if !ok {
		logger.Fatal("embedding.vectorizers.text is required")
	}
	textBase := newProvider(cfg, textVec, logger)
	docEmbedder := withInstruction(textBase, textVec.DocumentInstruction)
	queryEmbedder := withInstruction(textBase, textVec.QueryInstruction)

	var imageEmbedder *openaiEmb.ImageEmbedder
	if imgVec, ok := cfg.Embedding.Vectorizers["image"]; ok {
		prov := cfg.Embedding.Providers[imgVec.Provider]
		imageEmbedder = openaiEmb.NewImageEmbedder(&openaiEmb.Config{
			APIKey:   prov.APIKey,
			BaseURL:  prov.BaseURL,
			Model:    imgVec.Model,
			Provider: imgVec.Provider,
			Logger:   logger,
		})
	}
	logger.Info("Embedders created",
		zap.String("text_model", textVec.Model),
		zap.Bool("image_enabled", imageEmbedder != nil),
	)

	// Fusion services: the document side and the query side differ only in
	// the instruction prefix on the text embedder.
	fusionDefaults := cfg.FusionDefaults()
	docFuser := fusionuc.New(fusionDefaults, logger)
	queryFuser := fusionuc.New(fusionDefaults, logger)
	if imageEmbedder != nil {
		docFuser.WithEmbedders(docEmbedder, imageEmbedder)
		queryFuser.WithEmbedders(queryEmbedder, imageEmbedder)
	} else {
		docFuser.WithEmbedders(docEmbedder, nil)
		queryFuser.WithEmbedders(queryEmbedder, nil)
	}

	// Repositories
	itemsRepo := itemsrepo.New(store).WithHNSW(itemsrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	candidatesRepo := candidatesrepo.New(store)
	recentStore := recentrepo.New(store, time.Duration(cfg.Retrieval.RecentTTLSec)*time.Second)

	// Use case services
	aggregator := rankuc.NewAggregator(logger)
	retrievalSvc := retrievaluc.New(candidatesRepo, queryFuser, aggregator, cfg.Retrieval.Collections, logger).
		WithDefaults(cfg.Ranking.TopK, cfg.Ranking.MinScore).
		WithRecentRecorder(recentStore)
	itemSvc := itemuc.New(itemsRepo, docFuser, logger)

	recommendSvc := recommenduc.New(
		cfg.Recommendation.PerSourceLimit, cfg.Recommendation.FinalLimit, logger,
	).WithCache(store, time.Duration(cfg.Recommendation.CacheTTLSec)*time.Second)
	for _, collection := range cfg.Retrieval.Collections {
		recommendSvc.WithGenerators(recommenduc.NewSimilarToRecentGenerator(
			"similar_recent_"+collection, collection, recentStore, candidatesRepo,
		))
	}

	// Health service — pass nil interfaces (not typed nil pointers) for
	// absent providers.
	var textChecker, imageChecker healthuc.ProviderChecker
	textChecker = textBase
	if imageEmbedder != nil {
		imageChecker = imageEmbedder
	}
	healthSvc := healthuc.New(store, textChecker, imageChecker)

	// HTTP server
	server := chiTransport.NewServer(queryFuser, retrievalSvc, itemSvc, recommendSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// newProvider creates the base OpenAI-compatible text embedder for a vectorizer.
func newProvider(cfg config.Config, vec config.VectorizerConfig, logger *zap.Logger) *openaiEmb.Embedder {
	prov := cfg.Embedding.Providers[vec.Provider]
	return openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      vec.Model,
		Dimensions: vec.Dimensions,
		Provider:   vec.Provider,
		Logger:     logger,
	})
}

// withInstruction wraps an embedder with an instruction prefix when one is set.
func withInstruction(base domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return base
	}
	return domain.NewInstructionEmbedder(base, instruction)
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
