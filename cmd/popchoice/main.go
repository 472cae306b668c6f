package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/config"
	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/db/backend"
	"github.com/kailas-cloud/popchoice/internal/domain"
	logpkg "github.com/kailas-cloud/popchoice/internal/logger"
	"github.com/kailas-cloud/popchoice/internal/metrics"
	budgetrepo "github.com/kailas-cloud/popchoice/internal/repository/budget"
	"github.com/kailas-cloud/popchoice/internal/repository/catalog"
	"github.com/kailas-cloud/popchoice/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/popchoice/internal/repository/search"
	chiTransport "github.com/kailas-cloud/popchoice/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/popchoice/internal/transport/openai"
	"github.com/kailas-cloud/popchoice/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/popchoice/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/popchoice/internal/usecase/ingest"
	provideruc "github.com/kailas-cloud/popchoice/internal/usecase/provider"
	recommenduc "github.com/kailas-cloud/popchoice/internal/usecase/recommend"
	usageuc "github.com/kailas-cloud/popchoice/internal/usecase/usage"
	"github.com/kailas-cloud/popchoice/internal/version"
)

func main() {
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

	logger.Info("Starting popchoice API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("collection", cfg.Database.Collection),
	)

	h, err := backend.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer h.Store.Close()

	ctx := context.Background()
	if err := db.WaitForReady(ctx, h.Store, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.Register()

	// A single tracker is shared by the embedder, the completer and usage reporting.
	// Pass nil interfaces, not a typed nil pointer, when no budget is configured.
	var (
		budget       provideruc.BudgetChecker
		budgetReader usageuc.BudgetReader
	)
	if tracker := buildBudget(ctx, cfg, h.KV, logger); tracker != nil {
		budget = tracker
		budgetReader = tracker
	}

	baseEmbedder := openaiTransport.NewEmbedder(providerConfig(cfg, cfg.OpenAI.EmbeddingModel, logger))
	embedder := buildEmbedder(cfg, baseEmbedder, h.KV, budget, logger)

	completer := provideruc.NewInstrumentedCompleter(
		openaiTransport.NewCompleter(providerConfig(cfg, cfg.OpenAI.ChatModel, logger)),
		cfg.OpenAI.Provider, cfg.OpenAI.ChatModel, budget, logger,
	)
	logger.Info("Model provider configured",
		zap.String("provider", cfg.OpenAI.Provider),
		zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		zap.String("chat_model", cfg.OpenAI.ChatModel),
		zap.Int("dimensions", cfg.OpenAI.Dimensions),
	)

	var searchStore db.Searcher = h.Store
	if cfg.Breaker.Enabled {
		searchStore = searchrepo.NewBreakerStore(h.Store, searchrepo.BreakerConfig{
			Name:             cfg.Database.Driver,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			OpenTimeout:      time.Duration(cfg.Breaker.OpenTimeoutSec) * time.Second,
			HalfOpenRequests: cfg.Breaker.HalfOpenRequests,
		}, metrics.BreakerState, metrics.BreakerRequests, logger)
	}
	searcher := searchrepo.New(searchStore, cfg.Database.Collection,
		searchrepo.WithMetrics(metrics.SearchDuration, metrics.SearchResults))

	recommendSvc := recommenduc.New(
		generation.NewSummarizer(completer, cfg.Pipeline.SummaryTemperature),
		embedder,
		searcher,
		generation.NewSynthesizer(completer, generation.SynthesizerConfig{
			Temperature:      cfg.Pipeline.SynthesisTemperature,
			MaxTokens:        cfg.Pipeline.MaxTokens,
			FrequencyPenalty: cfg.Pipeline.FrequencyPenalty,
		}),
		recommenduc.Config{
			Threshold:   cfg.Pipeline.Threshold,
			TopK:        cfg.Pipeline.TopK,
			Dimensions:  cfg.OpenAI.Dimensions,
			CallTimeout: time.Duration(cfg.Pipeline.CallTimeoutSec) * time.Second,
		},
		logger,
	)

	healthSvc := healthuc.New(h.Store, baseEmbedder, logger)

	ingestSvc := ingestuc.New(
		ingestuc.NewSplitter(ingestuc.DefaultChunkSize, ingestuc.DefaultChunkOverlap),
		embedder,
		catalog.New(h.Store, cfg.Database.Collection, cfg.OpenAI.Dimensions),
		logger,
	)

	server := chiTransport.NewServer(recommendSvc, healthSvc, cfg.Pipeline.AllowExplain, logger).
		WithUsage(usageuc.New(budgetReader)).
		WithIngest(ingestSvc)
	router := chiTransport.NewRouter(server, logger, metrics.Middleware())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func providerConfig(cfg config.Config, model string, logger *zap.Logger) *openaiTransport.Config {
	return &openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      model,
		Dimensions: cfg.OpenAI.Dimensions,
		Provider:   cfg.OpenAI.Provider,
		RateLimit:  cfg.OpenAI.RateLimit,
		RateBurst:  cfg.OpenAI.RateBurst,
		Logger:     logger,
	}
}

// buildBudget returns nil when no limit is configured.
// Counters persist only when the driver offers a key-value store.
func buildBudget(ctx context.Context, cfg config.Config, kv db.KVStore, logger *zap.Logger) *provideruc.BudgetTracker {
	b := cfg.OpenAI.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := provideruc.BudgetActionWarn
	if b.Action == "reject" {
		action = provideruc.BudgetActionReject
	}
	tracker := provideruc.NewBudgetTracker(cfg.OpenAI.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
	if kv != nil {
		tracker.WithStore(ctx, budgetrepo.New(kv, 48*time.Hour, 62*24*time.Hour))
	}
	return tracker
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	cfg config.Config,
	base *openaiTransport.Embedder,
	kv db.KVStore,
	budget provideruc.BudgetChecker,
	logger *zap.Logger,
) *provideruc.InstrumentedEmbedder {
	var embedder domain.Embedder = base
	if cfg.Cache.Enabled && kv != nil {
		embedder = embcache.New(base, kv, cfg.OpenAI.EmbeddingModel,
			time.Duration(cfg.Cache.TTLHour)*time.Hour, metrics.EmbeddingCacheTotal, logger)
	}
	return provideruc.NewInstrumentedEmbedder(embedder, cfg.OpenAI.Provider, cfg.OpenAI.EmbeddingModel, budget, logger)
}
