package repository

import (
	"context"
	"errors"
	"fmt"

	"nba_props/pipeline/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

// Upsert inserts or updates a team keyed by abbreviation
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (abbreviation, city, nickname)
		VALUES ($1, $2, $3)
		ON CONFLICT (abbreviation) DO UPDATE SET
			city = CASE WHEN EXCLUDED.city <> '' THEN EXCLUDED.city ELSE teams.city END,
			nickname = CASE WHEN EXCLUDED.nickname <> '' THEN EXCLUDED.nickname ELSE teams.nickname END,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, team.Abbreviation, team.City, team.Nickname).
		Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Str("abbreviation", team.Abbreviation).
		Str("nickname", team.Nickname).
		Msg("Team upserted")

	return nil
}

// GetByAbbreviation retrieves a team by its abbreviation
func (r *TeamRepository) GetByAbbreviation(ctx context.Context, abbreviation string) (*models.Team, error) {
	query := `
		SELECT id, abbreviation, city, nickname, created_at, updated_at
		FROM teams
		WHERE abbreviation = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, abbreviation).Scan(
		&team.ID, &team.Abbreviation, &team.City, &team.Nickname,
		&team.CreatedAt, &team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: %s", abbreviation)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams ordered by abbreviation
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, abbreviation, city, nickname, created_at, updated_at
		FROM teams
		ORDER BY abbreviation
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(
			&team.ID, &team.Abbreviation, &team.City, &team.Nickname,
			&team.CreatedAt, &team.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}
