package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/stridetrack/stridetrack/internal/config"
	"github.com/stridetrack/stridetrack/internal/importer"
	"github.com/stridetrack/stridetrack/internal/ingest/healthsync"
	"github.com/stridetrack/stridetrack/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to directory of exported JSON payloads (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: stridetrack-import -config config.yaml -path /path/to/exports [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := db.GetOrCreateUser(ctx, "owner", "Owner")
	if err != nil {
		log.Error("resolving user failed", "error", err)
		os.Exit(1)
	}

	// Run import
	provider := healthsync.NewProvider(db, log)
	imp := importer.New(provider, userID, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"metric_points", stats.MetricPoints,
		"metric_days", stats.MetricDays,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_skipped", stats.WorkoutsSkipped,
	)
	if len(stats.RejectedMetrics) > 0 {
		log.Info("rejected metrics (not tracked)", "metrics", stats.RejectedMetrics)
	}
}
