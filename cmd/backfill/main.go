package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	backfillapp "github.com/finbook/backend/internal/application/backfill"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/taxdoc"
	"github.com/finbook/backend/internal/infrastructure/cache"
	"github.com/finbook/backend/internal/infrastructure/config"
	"github.com/finbook/backend/internal/infrastructure/logger"
	"github.com/finbook/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		dryRun     bool
		configPath string
		logLevel   string
	)

	flag.BoolVar(&dryRun, "dry-run", false, "Analyze and report without writing anything")
	flag.StringVar(&configPath, "config", "", "Path to config file (default: search for config.toml)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Logs go to stderr so a dry-run report on stdout can be piped cleanly
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	runLockFactory := cache.NewRunLockStoreFactory(cfg.Redis, cache.WithLogger(log))
	runLockStore, err := runLockFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create run lock store", zap.Error(err))
	}
	defer func() {
		if err := runLockStore.Close(); err != nil {
			log.Error("Error closing run lock store", zap.Error(err))
		}
	}()

	service := backfillapp.NewService(
		persistence.NewGormTransactionScope(db.DB),
		taxdoc.NewChecksumValidator(),
		runLockStore,
		shared.RunLockConfig{
			TTL:     cfg.Backfill.RunLockTTL,
			Enabled: cfg.Backfill.RunLockEnabled,
		},
		log,
	)

	// SIGINT/SIGTERM cancels the run; the surrounding transaction rolls back
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting counterparty backfill", zap.Bool("dry_run", dryRun))

	result, err := service.Run(ctx, dryRun)
	if err != nil {
		if errors.Is(err, backfillapp.ErrRunInProgress) {
			log.Error("Another backfill run is already in progress")
		} else {
			log.Error("Backfill run failed", zap.Error(err))
		}
		// An aborted dry run still carries the report assembled up to
		// the failure
		if result != nil && result.Report != nil {
			printReport(result.Report)
		}
		_ = logger.Sync(log)
		os.Exit(1)
	}

	if dryRun && result.Report != nil {
		printReport(result.Report)
		return
	}
	printStats(result.Stats)
}

func printReport(report *backfillapp.DryRunReport) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
	}
}

func printStats(stats *backfillapp.RunStats) {
	fmt.Printf("Backfill finished in %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("  transactions analyzed: %d\n", stats.TransactionsAnalyzed)
	fmt.Printf("  transactions skipped:  %d\n", stats.TransactionsSkipped)
	printBucket("companies", stats.Companies)
	printBucket("persons", stats.Persons)
	printBucket("anonymous persons", stats.AnonymousPersons)
}

func printBucket(label string, b backfillapp.BucketStats) {
	fmt.Printf("  %-18s created=%d existing=%d relinked=%d\n",
		label+":", b.Created, b.Existing, b.TransactionsUpdated)
}
