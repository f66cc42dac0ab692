// Command export rebuilds the wide training CSV and the model-ready feature
// table from the period store. Both files are recomputed wholesale on every
// run; an unchanged store yields byte-identical output.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"nba_props/pipeline/internal/config"
	"nba_props/pipeline/internal/export"
	"nba_props/pipeline/internal/features"
	"nba_props/pipeline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	period := flag.Int("period", 0, "period to export (0 = full game, 1-4 = quarters)")
	outDir := flag.String("out", "", "output directory (default EXPORT_DIR from config)")
	flag.Parse()

	setupLogger()

	cfg := config.MustLoad()
	dir := cfg.ExportDir
	if *outDir != "" {
		dir = *outDir
	}

	ctx := context.Background()

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

	exporter := export.New(db.Stats, dir)
	path, rows, err := exporter.Run(ctx, *period)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
	log.Info().Str("path", path).Int("rows", rows).Msg("Wide export complete")

	wide, err := db.Stats.WideRows(ctx, *period)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load rows for feature derivation")
	}

	engine := features.NewEngine(cfg.GarbageTimeMinutes, cfg.DefaultDaysRest)
	featureRows := engine.Filter(engine.Compute(wide))

	featurePath := filepath.Join(dir, export.ModelReadyFileName)
	if err := export.WriteFeatureCSV(featurePath, featureRows); err != nil {
		log.Fatal().Err(err).Msg("Feature export failed")
	}

	log.Info().
		Str("path", featurePath).
		Int("rows", len(featureRows)).
		Msg("Feature export complete")
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
