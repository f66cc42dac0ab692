package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"nba_props/pipeline/internal/config"
	"nba_props/pipeline/internal/export"
	"nba_props/pipeline/internal/features"
	"nba_props/pipeline/internal/ingest"
	"nba_props/pipeline/internal/models"
	"nba_props/pipeline/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the nightly background refresh:
// - Ingest newly completed games (skip-existing keeps the run incremental)
// - Rebuild the wide export and the model-ready feature table
// The provider publishes final box scores overnight, so a single early-morning
// run per day is sufficient.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *ingest.Orchestrator
	db           *repository.Database
	cron         *cron.Cron
	running      chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, orchestrator *ingest.Orchestrator, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		db:           db,
		cron:         cron.New(),
		running:      make(chan struct{}, 1),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyIngestCron, func() {
		if err := s.nightlyRefresh(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyIngestCron).
		Msg("Nightly refresh scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}

	log.Info().Msg("Scheduler stopped")
}

// nightlyRefresh runs the incremental ingest followed by a full export and
// feature rebuild. Overlapping runs are skipped; a slow season backfill must
// not be stacked with the next night's trigger.
func (s *Scheduler) nightlyRefresh(ctx context.Context) error {
	select {
	case s.running <- struct{}{}:
		defer func() { <-s.running }()
	default:
		log.Warn().Msg("Previous refresh still running, skipping this trigger")
		return nil
	}

	start := time.Now()
	season := models.CurrentSeasonLabel(time.Now())
	log.Info().Str("season", season).Msg("Running nightly refresh...")

	summary, err := s.orchestrator.Run(ctx, ingest.Options{
		Season:       season,
		SkipExisting: true,
	})
	if err != nil {
		return fmt.Errorf("nightly ingest failed: %w", err)
	}
	log.Info().
		Int("fetched", summary.Fetched).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Nightly ingest complete")

	if err := s.rebuildExports(ctx); err != nil {
		return err
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Nightly refresh complete")
	return nil
}

// rebuildExports regenerates the wide CSV and the feature table from the
// current store contents.
func (s *Scheduler) rebuildExports(ctx context.Context) error {
	exporter := export.New(s.db.Stats, s.cfg.ExportDir)
	_, rows, err := exporter.Run(ctx, 0)
	if err != nil {
		return fmt.Errorf("export rebuild failed: %w", err)
	}

	wide, err := s.db.Stats.WideRows(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load rows for features: %w", err)
	}

	engine := features.NewEngine(s.cfg.GarbageTimeMinutes, s.cfg.DefaultDaysRest)
	featureRows := engine.Filter(engine.Compute(wide))

	path := filepath.Join(s.cfg.ExportDir, export.ModelReadyFileName)
	if err := export.WriteFeatureCSV(path, featureRows); err != nil {
		return fmt.Errorf("feature export failed: %w", err)
	}

	log.Info().
		Int("wide_rows", rows).
		Int("feature_rows", len(featureRows)).
		Str("path", path).
		Msg("Exports rebuilt")
	return nil
}
