package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"nba_props/pipeline/internal/client"
	"nba_props/pipeline/internal/metrics"
	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrProviderOutage is returned when every eligible game in a run fails.
// Partial progress is still persisted; the run is resumable.
var ErrProviderOutage = errors.New("provider unreachable for every game in run")

// Fetcher is the provider surface the orchestrator consumes
type Fetcher interface {
	GameLog(ctx context.Context, season string) ([]models.GameLogEntry, error)
	BoxScore(ctx context.Context, gameID string, startPeriod, endPeriod int) (*models.BoxScore, error)
}

// ScheduleCache holds the season game log between resumed runs, sparing the
// provider a redundant schedule fetch. Optional; cache failures degrade to a
// fetch.
type ScheduleCache interface {
	GetSchedule(ctx context.Context, season string) ([]models.GameLogEntry, error)
	SetSchedule(ctx context.Context, season string, entries []models.GameLogEntry, ttl time.Duration) error
}

// Store is the persistence surface the orchestrator writes through
type Store interface {
	FullyIngestedGameIDs(ctx context.Context, season string) (map[string]struct{}, error)
	UpsertTeam(ctx context.Context, team *models.Team) error
	UpsertPlayer(ctx context.Context, player *models.Player) error
	UpsertGame(ctx context.Context, game *models.Game) error
	ReplaceGameStats(ctx context.Context, gameID string, stats []*models.PlayerPeriodStat) error
}

// Options controls a single ingestion run
type Options struct {
	Season       string
	MaxGames     int  // 0 means unbounded; applied after the skip-existing filter
	SkipExisting bool // skip games whose periods are all present
	DryRun       bool // fetch the first eligible game, emit JSON, persist nothing
	DryRunOut    io.Writer
}

// Orchestrator drives a season ingestion run: one logical worker issuing
// serialized, paced requests, with per-game cool-down retries. A full-season
// run is a long-running batch job; cancellation is honored between games so
// the store stays consistent and resumable.
type Orchestrator struct {
	fetcher Fetcher
	store   Store

	maxRetries   int
	cooldownBase time.Duration
	sleep        func(ctx context.Context, d time.Duration) error

	cache    ScheduleCache
	cacheTTL time.Duration
}

// New creates an Orchestrator. maxRetries bounds fetch attempts per game;
// cooldownBase is the first cool-down interval, doubled on each retry.
func New(fetcher Fetcher, store Store, maxRetries int, cooldownBase time.Duration) *Orchestrator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Orchestrator{
		fetcher:      fetcher,
		store:        store,
		maxRetries:   maxRetries,
		cooldownBase: cooldownBase,
		sleep:        sleepCtx,
	}
}

// WithScheduleCache enables schedule caching between runs
func (o *Orchestrator) WithScheduleCache(cache ScheduleCache, ttl time.Duration) *Orchestrator {
	o.cache = cache
	o.cacheTTL = ttl
	return o
}

// Run ingests a season. Per-game failures are recorded in the summary and the
// run proceeds; an error is returned only for run-level conditions (schedule
// unavailable, cancellation, or every game failing).
func (o *Orchestrator) Run(ctx context.Context, opts Options) (models.IngestSummary, error) {
	var summary models.IngestSummary
	start := time.Now()

	schedule, err := o.loadSchedule(ctx, opts.Season)
	if err != nil {
		return summary, fmt.Errorf("failed to load season schedule: %w", err)
	}
	log.Info().
		Str("season", opts.Season).
		Int("games", len(schedule)).
		Msg("Season schedule loaded")

	var ingested map[string]struct{}
	if opts.SkipExisting {
		ingested, err = o.store.FullyIngestedGameIDs(ctx, opts.Season)
		if err != nil {
			return summary, fmt.Errorf("failed to load ingestion cursor: %w", err)
		}
		log.Info().Int("count", len(ingested)).Msg("Previously ingested games found")
	}

	var eligible []*models.ScheduledGame
	for _, game := range schedule {
		if _, ok := ingested[game.GameID]; ok {
			summary.Skipped++
			continue
		}
		eligible = append(eligible, game)
	}

	if opts.MaxGames > 0 && len(eligible) > opts.MaxGames {
		eligible = eligible[:opts.MaxGames]
	}

	if opts.DryRun {
		if len(eligible) == 0 {
			log.Info().Msg("Dry run: no eligible games")
			return summary, nil
		}
		return summary, o.dryRun(ctx, eligible[0], opts.DryRunOut)
	}

	for _, game := range eligible {
		// Cancellation is honored between games, never mid-game
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := o.ingestGame(ctx, opts.Season, game); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed++
			metrics.RecordError("ingest", "game_failed")
			log.Error().
				Err(err).
				Str("game_id", game.GameID).
				Msg("Game ingestion failed, continuing run")
			continue
		}

		summary.Fetched++
		log.Info().
			Str("game_id", game.GameID).
			Int("fetched", summary.Fetched).
			Msg("Game ingested")
	}

	metrics.RecordRun(summary.Fetched, summary.Skipped, summary.Failed, time.Since(start).Seconds())

	if summary.Failed > 0 && summary.Fetched == 0 && summary.Failed == len(eligible) {
		return summary, ErrProviderOutage
	}

	return summary, nil
}

// loadSchedule fetches the league game log and pairs home/away entries into
// scheduled games, preserving schedule order. The schedule fetch itself gets
// the cool-down ladder: without it no run can start.
func (o *Orchestrator) loadSchedule(ctx context.Context, season string) ([]*models.ScheduledGame, error) {
	if o.cache != nil {
		cached, err := o.cache.GetSchedule(ctx, season)
		if err == nil {
			log.Debug().Str("season", season).Msg("Schedule served from cache")
			return PairSchedule(cached), nil
		}
	}

	var entries []models.GameLogEntry
	err := o.withRetries(ctx, "gamelog", func() error {
		var fetchErr error
		entries, fetchErr = o.fetcher.GameLog(ctx, season)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	if o.cache != nil {
		if err := o.cache.SetSchedule(ctx, season, entries, o.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache schedule, continuing")
		}
	}

	return PairSchedule(entries), nil
}

// ingestGame fetches all periods for one game, normalizes the payloads and
// replaces the game's rows in one transaction.
func (o *Orchestrator) ingestGame(ctx context.Context, season string, game *models.ScheduledGame) error {
	log.Debug().Str("game_id", game.GameID).Msg("Fetching game")

	var rows []*models.PlayerPeriodStat
	norm := newNormalizer(game)

	for _, period := range models.Periods {
		var box *models.BoxScore
		err := o.withRetries(ctx, "boxscore", func() error {
			var fetchErr error
			box, fetchErr = o.fetchPeriod(ctx, game.GameID, period)
			return fetchErr
		})
		if err != nil {
			return fmt.Errorf("period %d fetch failed: %w", period, err)
		}

		rows = append(rows, norm.PeriodRows(box, period)...)
	}

	// A fetch that produced nothing is a failure, not an empty success
	if len(rows) == 0 {
		return fmt.Errorf("game %s produced zero stat rows", game.GameID)
	}

	if err := o.store.UpsertTeam(ctx, norm.HomeTeam()); err != nil {
		return err
	}
	if err := o.store.UpsertTeam(ctx, norm.AwayTeam()); err != nil {
		return err
	}
	if err := o.store.UpsertGame(ctx, game.ToGame(season)); err != nil {
		return err
	}
	for _, player := range norm.Players() {
		if err := o.store.UpsertPlayer(ctx, player); err != nil {
			return err
		}
	}

	return o.store.ReplaceGameStats(ctx, game.GameID, rows)
}

func (o *Orchestrator) fetchPeriod(ctx context.Context, gameID string, period int) (*models.BoxScore, error) {
	if period == 0 {
		return o.fetcher.BoxScore(ctx, gameID, 0, 10)
	}
	return o.fetcher.BoxScore(ctx, gameID, period, period)
}

// withRetries runs fn up to maxRetries times, applying the exponential
// cool-down ladder (base, 2*base, ...) between transient failures. Fatal
// errors are never retried.
func (o *Orchestrator) withRetries(ctx context.Context, endpoint string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		start := time.Now()
		err := fn()
		if err == nil {
			metrics.RecordFetch(endpoint, "ok", time.Since(start).Seconds())
			return nil
		}
		lastErr = err
		metrics.RecordFetch(endpoint, "error", time.Since(start).Seconds())

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if client.IsFatal(err) || attempt == o.maxRetries {
			break
		}

		cooldown := o.cooldownBase * time.Duration(1<<uint(attempt-1))
		metrics.RecordRetry()
		log.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Int("attempt", attempt).
			Dur("cooldown", cooldown).
			Msg("Transient fetch failure, cooling down before retry")

		if err := o.sleep(ctx, cooldown); err != nil {
			return err
		}
	}

	return lastErr
}

// dryRun fetches the full-game box score for one game and emits the
// normalized rows as JSON without touching the store. Used to verify
// provider-schema compatibility by hand.
func (o *Orchestrator) dryRun(ctx context.Context, game *models.ScheduledGame, out io.Writer) error {
	box, err := o.fetchPeriod(ctx, game.GameID, 0)
	if err != nil {
		return fmt.Errorf("dry run fetch failed: %w", err)
	}

	norm := newNormalizer(game)
	rows := norm.PeriodRows(box, 0)

	log.Info().
		Str("game_id", game.GameID).
		Int("rows", len(rows)).
		Msg("Dry run fetch complete")

	if out == nil {
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
