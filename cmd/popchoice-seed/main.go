/*
Package main is the seeding job for the popchoice movie catalog.

It reads a plain-text movie list, splits it into passages, embeds them and
writes them into the configured vector store. The serving API never writes.

Usage:

	popchoice-seed [flags]

Examples:

	# Seed the local embedded store from data/movies.txt
	ENV=local popchoice-seed

	# Seed a Supabase project from a custom file
	ENV=prod popchoice-seed --file ./catalog.txt
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/config"
	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/db/backend"
	logpkg "github.com/kailas-cloud/popchoice/internal/logger"
	"github.com/kailas-cloud/popchoice/internal/metrics"
	"github.com/kailas-cloud/popchoice/internal/repository/catalog"
	openaiTransport "github.com/kailas-cloud/popchoice/internal/transport/openai"
	ingestuc "github.com/kailas-cloud/popchoice/internal/usecase/ingest"
	provideruc "github.com/kailas-cloud/popchoice/internal/usecase/provider"
	"github.com/kailas-cloud/popchoice/internal/version"
)

type seedOptions struct {
	file         string
	configPath   string
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:           "popchoice-seed",
		Short:         "Embed the movie catalog and load it into the vector store",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  popchoice-seed
  popchoice-seed --file ./catalog.txt --chunk-size 300`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSeed(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", filepath.Join("data", "movies.txt"), "movie catalog text file")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (default config/<ENV>.yaml)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", ingestuc.DefaultChunkSize, "passage size in characters")
	cmd.Flags().IntVar(&opts.chunkOverlap, "chunk-overlap", ingestuc.DefaultChunkOverlap, "overlap between passages")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 100, "points per upsert call")

	return cmd
}

func runSeed(ctx context.Context, opts seedOptions) error {
	if opts.chunkOverlap >= opts.chunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", opts.chunkOverlap, opts.chunkSize)
	}

	env := config.GetEnv()
	cfg, err := loadConfig(env, opts.configPath)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	text, err := os.ReadFile(filepath.Clean(opts.file))
	if err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", opts.file, err)
	}

	h, err := backend.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to create database store: %w", err)
	}
	defer h.Store.Close()

	if err := db.WaitForReady(ctx, h.Store, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.Register()

	embedder := provideruc.NewInstrumentedEmbedder(
		openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.EmbeddingModel,
			Dimensions: cfg.OpenAI.Dimensions,
			Provider:   cfg.OpenAI.Provider,
			RateLimit:  cfg.OpenAI.RateLimit,
			RateBurst:  cfg.OpenAI.RateBurst,
			Logger:     logger,
		}),
		cfg.OpenAI.Provider, cfg.OpenAI.EmbeddingModel, nil, logger,
	)

	repo := catalog.New(h.Store, cfg.Database.Collection, cfg.OpenAI.Dimensions).WithBatchSize(opts.batchSize)
	svc := ingestuc.New(ingestuc.NewSplitter(opts.chunkSize, opts.chunkOverlap), embedder, repo, logger)

	logger.Info("Seeding catalog",
		zap.String("file", opts.file),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("collection", cfg.Database.Collection),
		zap.String("model", cfg.OpenAI.EmbeddingModel),
	)

	stats, err := svc.Ingest(ctx, string(text))
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	fmt.Printf("Stored %d passages in %q (%d tokens, %s)\n",
		stats.Passages, cfg.Database.Collection, stats.Tokens, stats.Duration.Round(time.Millisecond))
	return nil
}

func loadConfig(env, path string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
