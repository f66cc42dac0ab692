// Command ingest runs a full-season ingestion against the NBA Stats API.
// A season backfill is a long-running batch job; the run is resumable with
// --skip-existing, and --dry-run verifies provider-schema compatibility
// without touching the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"nba_props/pipeline/internal/client"
	"nba_props/pipeline/internal/config"
	"nba_props/pipeline/internal/ingest"
	"nba_props/pipeline/internal/models"
	"nba_props/pipeline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// runFlags holds the per-run CLI options layered over the environment config
type runFlags struct {
	season       string
	dryRun       bool
	maxGames     int
	skipExisting bool
	maxRetries   int
	timeout      time.Duration
	summarize    bool
}

func parseFlags(args []string) (*runFlags, error) {
	var opts runFlags
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.StringVar(&opts.season, "season", models.CurrentSeasonLabel(time.Now()), "season label, e.g. 2023-24")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "fetch one game, print normalized rows, persist nothing")
	fs.IntVar(&opts.maxGames, "max-games", 0, "cap the number of games ingested (0 = all)")
	fs.BoolVar(&opts.skipExisting, "skip-existing", false, "skip games already fully ingested (resumed runs)")
	fs.IntVar(&opts.maxRetries, "max-retries", 0, "override MAX_RETRIES for this run (0 = use config)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "override NBA_STATS_TIMEOUT for this run, e.g. 45s (0 = use config)")
	fs.BoolVar(&opts.summarize, "summarize", false, "print store coverage summary and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return &opts, nil
}

// applyOverrides layers the per-run flag overrides onto the loaded config
func applyOverrides(cfg *config.Config, opts *runFlags) {
	if opts.maxRetries > 0 {
		cfg.MaxRetries = opts.maxRetries
	}
	if opts.timeout > 0 {
		cfg.NBAStatsTimeout = opts.timeout
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	setupLogger()

	cfg := config.MustLoad()
	applyOverrides(cfg, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, finishing current game...")
		cancel()
	}()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if opts.summarize {
		printSummary(ctx, db)
		return
	}

	nbaClient := client.NewClient(client.Options{
		BaseURL:   cfg.NBAStatsBaseURL,
		Timeout:   cfg.NBAStatsTimeout,
		JitterMin: cfg.FetchJitterMin,
		JitterMax: cfg.FetchJitterMax,
	})

	orchestrator := ingest.New(nbaClient, db.IngestStore(), cfg.MaxRetries, cfg.RetryCooldown)

	log.Info().
		Str("season", opts.season).
		Bool("dry_run", opts.dryRun).
		Bool("skip_existing", opts.skipExisting).
		Int("max_games", opts.maxGames).
		Msg("Starting ingestion run")

	summary, err := orchestrator.Run(ctx, ingest.Options{
		Season:       opts.season,
		MaxGames:     opts.maxGames,
		SkipExisting: opts.skipExisting,
		DryRun:       opts.dryRun,
		DryRunOut:    os.Stdout,
	})

	log.Info().
		Int("fetched", summary.Fetched).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Ingestion run finished")

	if err != nil {
		if errors.Is(err, ingest.ErrProviderOutage) {
			log.Error().Msg("Every game in the run failed; provider likely unreachable")
		} else {
			log.Error().Err(err).Msg("Ingestion run failed")
		}
		os.Exit(1)
	}
}

func setupLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

func printSummary(ctx context.Context, db *repository.Database) {
	summary, err := db.Stats.Summary(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load store summary")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
