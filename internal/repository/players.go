package repository

import (
	"context"
	"errors"
	"fmt"

	"nba_props/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a player keyed by the provider's player ID
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (nba_id, first_name, last_name, position, team_abbreviation)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (nba_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			position = EXCLUDED.position,
			team_abbreviation = EXCLUDED.team_abbreviation,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.NBAID, player.FirstName, player.LastName, player.Position, player.TeamAbbrev,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// GetByNBAID retrieves a player by the provider's player ID
func (r *PlayerRepository) GetByNBAID(ctx context.Context, nbaID int) (*models.Player, error) {
	query := `
		SELECT id, nba_id, first_name, last_name, position, team_abbreviation, created_at, updated_at
		FROM players
		WHERE nba_id = $1
	`

	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, nbaID).Scan(
		&player.ID, &player.NBAID, &player.FirstName, &player.LastName,
		&player.Position, &player.TeamAbbrev, &player.CreatedAt, &player.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player not found: nba_id=%d", nbaID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &player, nil
}
