package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/spektr-org/socialavg/aggregator"
	"github.com/spektr-org/socialavg/internal/config"
	"github.com/spektr-org/socialavg/internal/logger"
	"github.com/spektr-org/socialavg/store"
)

// ============================================================================
// SOCIALAVG CLI — average Likes by platform/post type and by date
// ============================================================================

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the whole CLI; it returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// ── Flags ─────────────────────────────────────────────────────────────
	fs := flag.NewFlagSet("socialavg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	showVersion := fs.Bool("version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `socialavg — average Likes by platform/post type and by date

Usage:
  socialavg                       read socialMedia.csv, write socialMediaAvg.csv and socialMediaTime.csv
  socialavg --config run.yaml

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Environment:
  %s, %s, %s,
  %s, %s, %s
  APP_ENV=production skips loading .env
`, config.EnvInput, config.EnvAvgOutput, config.EnvTimeOutput,
			config.EnvPreviewRows, config.EnvLogMode, config.EnvSQLitePath)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "socialavg %s\n", version)
		return 0
	}

	// ── Env + config ──────────────────────────────────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to build logger: %v\n", err)
		return 1
	}
	defer logg.Sync()

	// ── Aggregate ─────────────────────────────────────────────────────────
	runner := aggregator.NewRunner(cfg.RunOptions(), stdout, logg)

	rep, err := runner.Run()
	if err != nil {
		logg.Error("aggregation failed", "error", err)
		return 1
	}

	// ── Optional SQLite copy ──────────────────────────────────────────────
	if cfg.Store.SQLitePath != "" {
		st, err := store.OpenSQLite(cfg.Store.SQLitePath, logg)
		if err != nil {
			logg.Error("store unavailable", "error", err)
			return 1
		}
		defer st.Close()
		if err := st.SaveReport(context.Background(), rep); err != nil {
			logg.Error("store failed", "error", err)
			return 1
		}
	}

	logg.Info("done", "run_id", rep.RunID, "records", rep.Records)
	return 0
}
