package repository

import (
	"context"

	"nba_props/pipeline/internal/models"
)

// IngestStore presents the repositories as the single persistence surface the
// ingestion orchestrator writes through.
type IngestStore struct {
	db *Database
}

// IngestStore returns the ingestion-facing view of the database
func (db *Database) IngestStore() *IngestStore {
	return &IngestStore{db: db}
}

func (s *IngestStore) FullyIngestedGameIDs(ctx context.Context, season string) (map[string]struct{}, error) {
	return s.db.Stats.FullyIngestedGameIDs(ctx, season)
}

func (s *IngestStore) UpsertTeam(ctx context.Context, team *models.Team) error {
	return s.db.Teams.Upsert(ctx, team)
}

func (s *IngestStore) UpsertPlayer(ctx context.Context, player *models.Player) error {
	return s.db.Players.Upsert(ctx, player)
}

func (s *IngestStore) UpsertGame(ctx context.Context, game *models.Game) error {
	return s.db.Games.Upsert(ctx, game)
}

func (s *IngestStore) ReplaceGameStats(ctx context.Context, gameID string, stats []*models.PlayerPeriodStat) error {
	return s.db.Stats.ReplaceGameStats(ctx, gameID, stats)
}
