package repository

import (
	"context"
	"fmt"
)

// Schema is managed externally in production; EnsureSchema exists so tests
// and fresh development databases can bootstrap themselves.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS teams (
	id SERIAL PRIMARY KEY,
	abbreviation TEXT NOT NULL UNIQUE,
	city TEXT NOT NULL DEFAULT '',
	nickname TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS players (
	id SERIAL PRIMARY KEY,
	nba_id INTEGER NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT 'UNK',
	team_abbreviation TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS games (
	id SERIAL PRIMARY KEY,
	game_id TEXT NOT NULL UNIQUE,
	season TEXT NOT NULL,
	date DATE NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	home_score INTEGER NOT NULL DEFAULT 0,
	away_score INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS player_period_stats (
	id SERIAL PRIMARY KEY,
	player_nba_id INTEGER NOT NULL,
	game_id TEXT NOT NULL,
	period SMALLINT NOT NULL,
	team_abbreviation TEXT NOT NULL,
	pts INTEGER NOT NULL DEFAULT 0,
	reb INTEGER NOT NULL DEFAULT 0,
	ast INTEGER NOT NULL DEFAULT 0,
	min DOUBLE PRECISION NOT NULL DEFAULT 0,
	fga INTEGER NOT NULL DEFAULT 0,
	fgm INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (player_nba_id, game_id, period)
);

CREATE INDEX IF NOT EXISTS pps_game_period_idx ON player_period_stats (game_id, period);
CREATE INDEX IF NOT EXISTS pps_player_period_idx ON player_period_stats (player_nba_id, period);
`

// EnsureSchema creates the core tables when they do not exist
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
