package repository

import (
	"context"
	"errors"
	"fmt"

	"nba_props/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a game keyed by the provider's game ID
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (game_id, season, date, home_team, away_team, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			date = EXCLUDED.date,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.GameID, game.Season, game.Date, game.HomeTeam, game.AwayTeam,
		game.HomeScore, game.AwayScore,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	log.Debug().
		Str("game_id", game.GameID).
		Str("home", game.HomeTeam).
		Str("away", game.AwayTeam).
		Msg("Game upserted")

	return nil
}

// GetByGameID retrieves a game by the provider's game ID
func (r *GameRepository) GetByGameID(ctx context.Context, gameID string) (*models.Game, error) {
	query := `
		SELECT id, game_id, season, date, home_team, away_team, home_score, away_score,
		       created_at, updated_at
		FROM games
		WHERE game_id = $1
	`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.ID, &game.GameID, &game.Season, &game.Date,
		&game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
		&game.CreatedAt, &game.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game not found: %s", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// ListBySeason retrieves a season's games in date order
func (r *GameRepository) ListBySeason(ctx context.Context, season string) ([]*models.Game, error) {
	query := `
		SELECT id, game_id, season, date, home_team, away_team, home_score, away_score,
		       created_at, updated_at
		FROM games
		WHERE season = $1
		ORDER BY date, game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var game models.Game
		if err := rows.Scan(
			&game.ID, &game.GameID, &game.Season, &game.Date,
			&game.HomeTeam, &game.AwayTeam, &game.HomeScore, &game.AwayScore,
			&game.CreatedAt, &game.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
