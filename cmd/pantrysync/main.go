// pantrysync keeps a pantry database in step with the meal plan: it deducts
// consumed ingredients from stock and auto-adds depleted items to the
// shopping list.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/celiogix/pantrysync/internal/config"
	"github.com/celiogix/pantrysync/internal/database"
	"github.com/celiogix/pantrysync/internal/database/seed"
	"github.com/celiogix/pantrysync/internal/repository"
	"github.com/celiogix/pantrysync/internal/services/consumption"
	"github.com/celiogix/pantrysync/internal/services/shopping"
	"github.com/celiogix/pantrysync/internal/util"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		migrateOnly = flag.Bool("migrate-only", false, "Run migrations and exit")
		seedData    = flag.Bool("seed", false, "Generate sample data and exit")
		asOf        = flag.String("as-of", "", "Sync cutoff date (YYYY-MM-DD, default today)")
		showVersion = flag.Bool("version", false, "Show version and exit")
		debugMode   = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pantrysync version %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		time.AfterFunc(10*time.Second, func() {
			slog.Error("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	if err := run(ctx, *configPath, *migrateOnly, *seedData, *asOf, *debugMode); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, migrateOnly, seedData bool, asOfStr string, debugMode bool) error {
	cfg, cfgPath, err := config.Load(configPath, true)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case config.LogLevelDebug:
			logLevel = slog.LevelDebug
		case config.LogLevelWarn:
			logLevel = slog.LevelWarn
		case config.LogLevelError:
			logLevel = slog.LevelError
		}
	}

	var logHandler slog.Handler
	logPath, err := config.EnsureLogDir(cfg)
	if err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()

		logHandler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{
			Level: logLevel,
		})
	} else {
		logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		})
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	slog.Info("pantrysync starting",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cfgPath,
	)

	asOf := util.StartOfDay(time.Now())
	if asOfStr != "" {
		asOf, err = util.ParseDate(asOfStr)
		if err != nil {
			return fmt.Errorf("parsing -as-of date %q: %w", asOfStr, err)
		}
	}

	dbPath, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("ensuring data directory: %w", err)
	}

	backupDir, err := config.BackupDir(cfg)
	if err != nil {
		slog.Warn("failed to create backup directory", "error", err)
		backupDir = ""
	}

	db, err := database.Open(dbPath, &cfg.Database, backupDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		slog.Info("closing database")
		if err := db.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}()

	migrator, err := database.NewMigrator(db)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	result, err := migrator.MigrateUp(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if len(result.Applied) > 0 {
		slog.Info("applied migrations",
			"count", len(result.Applied),
			"to_version", result.TargetVersion,
		)
	}

	if migrateOnly {
		slog.Info("migrations complete, exiting")
		return nil
	}

	if seedData {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM pantry_items").Scan(&count); err == nil && count > 0 {
			slog.Warn("database already contains pantry items, skipping seed generation", "count", count)
			return nil
		}

		generator := seed.NewGenerator(db.DB, seed.DefaultConfig(time.Now()), logger)
		if err := generator.Generate(ctx); err != nil {
			return fmt.Errorf("generating seed data: %w", err)
		}

		slog.Info("seed data generation complete")
		return nil
	}

	shoppingRepo, err := repository.NewShoppingRepository(db.DB, repository.DefaultColumnMap())
	if err != nil {
		return fmt.Errorf("creating shopping repository: %w", err)
	}

	opts := consumption.Options{
		RestockQuantity:      cfg.Sync.RestockQuantity,
		AllowUnitPassthrough: cfg.Sync.AllowUnitPassthrough,
	}
	service := consumption.NewService(db, shopping.NewMerger(shoppingRepo, logger), opts, logger)

	report, err := service.SyncMenuConsumption(ctx, asOf)
	if err != nil {
		printReport(report, asOf)
		return fmt.Errorf("consumption sync: %w", err)
	}

	printReport(report, asOf)
	return nil
}

func printReport(report *consumption.SyncReport, asOf time.Time) {
	fmt.Printf("Sync %s (up to %s)\n", report.RunID, util.FormatDate(asOf))
	fmt.Printf("  menu entries applied:  %d\n", report.ProcessedEntries)
	fmt.Printf("  pantry deductions:     %d\n", report.UpdatedItems)
	fmt.Printf("  ingredients skipped:   %d\n", report.SkippedIngredients)
	fmt.Printf("  shopping list updates: %d\n", report.AutoAdded)
}
