// Package main Content Ingestion API
//
// Accepts content submissions, runs them through the validation,
// deduplication and quality scoring pipeline, and persists the survivors.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/asapdigest/content-pipeline/internal/enrich"
	"github.com/asapdigest/content-pipeline/internal/errlog"
	"github.com/asapdigest/content-pipeline/internal/events"
	"github.com/asapdigest/content-pipeline/internal/processor"
	"github.com/asapdigest/content-pipeline/internal/router"
	"github.com/asapdigest/content-pipeline/internal/server"
	"github.com/asapdigest/content-pipeline/internal/storage"
	"github.com/asapdigest/content-pipeline/internal/storage/inmem"
	"github.com/asapdigest/content-pipeline/internal/storage/pg"
	pkgserver "github.com/asapdigest/content-pipeline/pkg/server"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := LoadAppConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		contentRepo storage.ContentRepository
		indexRepo   storage.IndexRepository
		checker     pkgserver.HealthChecker
	)
	switch cfg.Storage {
	case "postgres":
		pool, err := pg.NewConnectionPool(ctx, pg.Config{ConnStr: cfg.DatabaseURL})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		contentRepo = pg.NewContentRepository(pool)
		indexRepo = pg.NewIndexRepository(pool)
		checker = pkgserver.NewPingHealthChecker(pool)
	case "memory":
		mem := inmem.NewContentRepository()
		contentRepo = mem
		indexRepo = inmem.NewIndexRepository(mem)
		checker = pkgserver.NewOkHealthChecker()
		slog.Warn("Using in-memory storage, data will not survive restarts")
	}

	opts := []processor.Option{
		processor.WithAutoRejectScore(cfg.AutoRejectScore),
		processor.WithMinimumScore(cfg.MinimumScore),
	}

	if cfg.OpenAIKey != "" {
		svc, err := enrich.NewOpenAI(enrich.Config{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.OpenAITimeout,
		})
		if err != nil {
			slog.Error("Failed to create enrichment client", "error", err)
			os.Exit(1)
		}
		taxonomy, err := enrich.LoadTaxonomyFile(cfg.TaxonomyFile)
		if err != nil {
			slog.Error("Failed to load taxonomy", "error", err)
			os.Exit(1)
		}
		opts = append(opts, processor.WithEnricher(svc, taxonomy))
		slog.Info("AI enrichment enabled", "model", cfg.OpenAIModel)
	} else {
		slog.Info("AI enrichment disabled")
	}

	if cfg.NatsURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NatsURL, "content")
		if err != nil {
			slog.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		opts = append(opts, processor.WithEvents(pub))
		slog.Info("Publishing content events to NATS", "url", cfg.NatsURL)
	}

	proc := processor.New(contentRepo, indexRepo, errlog.New(nil), opts...)

	s, err := server.New(&server.Config{Port: cfg.Port, CorsOrigins: cfg.CorsOrigins}, checker)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	contentRouter := router.NewContentRouter(s.Echo, proc)
	contentRouter.Bind()

	if err := s.Start(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
