// Package main is the index maintenance tool. It rebuilds the fingerprint
// index from the content table or prints a near-duplicate report, against
// the same database the API serves from.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/asapdigest/content-pipeline/internal/dedup"
	"github.com/asapdigest/content-pipeline/internal/storage/pg"
)

func main() {
	var (
		mode      = flag.String("mode", "reindex", "reindex or report")
		batchSize = flag.Int("batch-size", 100, "content rows per reindex page")
		afterID   = flag.Int64("after-id", 0, "resume reindexing after this content id")
		window    = flag.Duration("window", 7*24*time.Hour, "report lookback window")
		limit     = flag.Int("limit", 1000, "max rows scanned for the report")
	)
	flag.Parse()

	cfg, err := LoadReindexConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := pg.NewConnectionPool(ctx, pg.Config{ConnStr: cfg.DatabaseURL})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	content := pg.NewContentRepository(pool)
	index := pg.NewIndexRepository(pool)
	d := dedup.New(content, index)

	switch *mode {
	case "reindex":
		report, err := d.ReindexContentFrom(ctx, *batchSize, *afterID)
		if err != nil {
			slog.Error("Reindex failed", "error", err, "lastId", report.LastID)
			printJSON(report)
			os.Exit(1)
		}
		slog.Info("Reindex complete",
			"scanned", report.Scanned,
			"inserted", report.Inserted,
			"updated", report.Updated,
			"conflicts", report.Conflicts,
			"orphansRemoved", report.OrphansRemoved,
		)
		printJSON(report)
	case "report":
		report, err := d.GenerateDuplicateReport(ctx, dedup.ReportOptions{Window: *window, Limit: *limit})
		if err != nil {
			slog.Error("Duplicate report failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Duplicate report complete", "scanned", report.Scanned, "groups", len(report.Groups))
		printJSON(report)
	default:
		slog.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode output", "error", err)
	}
}
