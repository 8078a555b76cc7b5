package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"distprune/internal/config"
	"distprune/internal/database"
	"distprune/internal/exitcodes"
	"distprune/internal/logging"
	"distprune/internal/metrics"
	"distprune/internal/pipeline"
	"distprune/internal/remover"
	"distprune/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse command-line flags
	configPath := pflag.StringP("config", "c", "configs/virocore.yaml", "Path to prune configuration file")
	baseDir := pflag.String("base-dir", "", "Source tree root (overrides base_dir from the config)")
	dbPath := pflag.String("db", "", "Path to run history database (overrides database_path)")
	strict := pflag.Bool("strict", false, "Exit non-zero when any method could not be found")
	pflag.Parse()

	// A missing .env is fine
	_ = godotenv.Load()

	logger := logging.New()
	logger.Println("distprune starting...")
	logger.Printf("Config file: %s", *configPath)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("ERROR: Failed to load config: %v", err)
		return exitcodes.InvalidConfig
	}
	if *baseDir != "" {
		abs, err := filepath.Abs(*baseDir)
		if err != nil {
			logger.Printf("ERROR: Invalid base dir %s: %v", *baseDir, err)
			return exitcodes.InvalidConfig
		}
		cfg.BaseDir = abs
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	// Reopen with the configured log file now that the config is known
	logger = logging.NewWithConfig(cfg)
	logger.Printf("Base dir: %s", cfg.BaseDir)

	metrics.Init()

	// Initialize database for run history
	var db *database.RunDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening run database: %s", cfg.DatabasePath)
		db, err = database.NewRunDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			return exitcodes.RuntimeError
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	spec := cfg.Spec()
	logger.Printf("Removing %d file(s), pruning %d signature(s) in %d file(s)",
		len(spec.FilesToRemove()), spec.SignatureCount(), len(spec.MethodsToDelete()))

	rep, runErr := pipeline.NewRunner(logger, db).Run(cfg.BaseDir, spec)
	ui.PrintSummary(rep, runErr)

	if cfg.Metrics.TextfilePath != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Printf("ERROR: Failed to export metrics: %v", err)
		}
	}

	if runErr != nil {
		logger.Printf("ERROR: Prune failed: %v", runErr)
		return exitCode(runErr)
	}
	if *strict && rep.Unresolved() > 0 {
		logger.Printf("ERROR: %d method(s) left unresolved", rep.Unresolved())
		return exitcodes.UnresolvedSignatures
	}

	logger.Println("Prune completed successfully")
	return exitcodes.Success
}

func exitCode(err error) int {
	var rerr *remover.RemovalError
	switch {
	case errors.Is(err, remover.ErrUnsafePath), errors.Is(err, pipeline.ErrUnsafeTarget):
		return exitcodes.SafetyViolation
	case errors.As(err, &rerr):
		return exitcodes.RemovalFailed
	default:
		return exitcodes.RuntimeError
	}
}
