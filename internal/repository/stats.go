package repository

import (
	"context"
	"fmt"

	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

// StatRepository handles per-period player stat rows. Rows are unique per
// (player, game, period); a game's rows are always replaced as a unit so the
// uniqueness invariant survives re-ingestion.
type StatRepository struct {
	db *Database
}

// ReplaceGameStats atomically replaces all stat rows for a game. Partial
// per-period patching is deliberately unsupported: an inconsistent game is
// re-fetched whole.
func (r *StatRepository) ReplaceGameStats(ctx context.Context, gameID string, stats []*models.PlayerPeriodStat) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM player_period_stats WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("failed to clear game stats: %w", err)
	}

	query := `
		INSERT INTO player_period_stats (
			player_nba_id, game_id, period, team_abbreviation,
			pts, reb, ast, min, fga, fgm
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for _, stat := range stats {
		if _, err := tx.Exec(
			ctx, query,
			stat.PlayerNBAID, stat.GameID, stat.Period, stat.TeamAbbrev,
			stat.Points, stat.Rebounds, stat.Assists, stat.Minutes,
			stat.FieldGoalsAttempted, stat.FieldGoalsMade,
		); err != nil {
			return fmt.Errorf("failed to insert stat row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game stats: %w", err)
	}

	log.Debug().
		Str("game_id", gameID).
		Int("rows", len(stats)).
		Msg("Game stats replaced")

	return nil
}

// FullyIngestedGameIDs returns the season's game IDs that carry all expected
// periods. This is the resumption cursor: it is derived, never stored.
func (r *StatRepository) FullyIngestedGameIDs(ctx context.Context, season string) (map[string]struct{}, error) {
	query := `
		SELECT s.game_id
		FROM player_period_stats s
		JOIN games g ON g.game_id = s.game_id
		WHERE g.season = $1
		GROUP BY s.game_id
		HAVING COUNT(DISTINCT s.period) = $2
	`

	rows, err := r.db.Pool.Query(ctx, query, season, models.PeriodsPerGame)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingested games: %w", err)
	}
	defer rows.Close()

	ingested := make(map[string]struct{})
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ingested[gameID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingested games: %w", err)
	}

	return ingested, nil
}

// WideRows flattens the requested period into one row per (player, game),
// joining game and player context. Ordering is fixed so repeated exports over
// an unchanged store are byte-identical.
func (r *StatRepository) WideRows(ctx context.Context, period int) ([]models.WideTrainingRow, error) {
	query := `
		SELECT g.date, s.game_id,
		       TRIM(p.first_name || ' ' || p.last_name) AS player_name,
		       s.team_abbreviation, g.home_team, g.away_team,
		       s.pts, s.reb, s.ast, s.min,
		       CASE WHEN s.fga > 0 THEN s.fgm::float / s.fga ELSE 0 END AS fg_pct
		FROM player_period_stats s
		JOIN games g ON g.game_id = s.game_id
		JOIN players p ON p.nba_id = s.player_nba_id
		WHERE s.period = $1
		ORDER BY player_name, g.date, s.game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("failed to query wide rows: %w", err)
	}
	defer rows.Close()

	var wide []models.WideTrainingRow
	for rows.Next() {
		var row models.WideTrainingRow
		if err := rows.Scan(
			&row.Date, &row.GameID, &row.PlayerName, &row.PlayerTeam,
			&row.HomeTeam, &row.AwayTeam,
			&row.Points, &row.Rebounds, &row.Assists, &row.Minutes, &row.FGPct,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wide row: %w", err)
		}
		wide = append(wide, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wide rows: %w", err)
	}

	return wide, nil
}

// Summary reports ingested data coverage for quick sanity checks
func (r *StatRepository) Summary(ctx context.Context) (*models.StoreSummary, error) {
	summary := &models.StoreSummary{RowsPerPeriod: make(map[int]int)}

	counts := `
		SELECT
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM players),
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(*) FROM player_period_stats)
	`
	if err := r.db.Pool.QueryRow(ctx, counts).Scan(
		&summary.Teams, &summary.Players, &summary.Games, &summary.StatRows,
	); err != nil {
		return nil, fmt.Errorf("failed to query counts: %w", err)
	}

	coverage := `
		SELECT
			COUNT(*) FILTER (WHERE periods = $1),
			COUNT(*) FILTER (WHERE periods < $1)
		FROM (
			SELECT game_id, COUNT(DISTINCT period) AS periods
			FROM player_period_stats
			GROUP BY game_id
		) per_game
	`
	if err := r.db.Pool.QueryRow(ctx, coverage, models.PeriodsPerGame).Scan(
		&summary.FullGames, &summary.IncompleteGames,
	); err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}

	if summary.Games > 0 {
		dates := `SELECT MIN(date), MAX(date) FROM games`
		if err := r.db.Pool.QueryRow(ctx, dates).Scan(&summary.MinDate, &summary.MaxDate); err != nil {
			return nil, fmt.Errorf("failed to query date range: %w", err)
		}
	}

	perPeriod := `
		SELECT period, COUNT(*)
		FROM player_period_stats
		GROUP BY period
		ORDER BY period
	`
	rows, err := r.db.Pool.Query(ctx, perPeriod)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-period counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var period, count int
		if err := rows.Scan(&period, &count); err != nil {
			return nil, fmt.Errorf("failed to scan period count: %w", err)
		}
		summary.RowsPerPeriod[period] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period counts: %w", err)
	}

	return summary, nil
}
