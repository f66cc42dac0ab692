//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"nba_props/pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGame(t *testing.T, db *Database, ctx context.Context, gameID string, day int) {
	t.Helper()

	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{Abbreviation: "AAA", City: "Alpha", Nickname: "Antelopes"}))
	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{Abbreviation: "BBB", City: "Beta", Nickname: "Bisons"}))
	require.NoError(t, db.Games.Upsert(ctx, &models.Game{
		GameID:   gameID,
		Season:   "2023-24",
		Date:     time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		HomeTeam: "AAA",
		AwayTeam: "BBB",
	}))
	require.NoError(t, db.Players.Upsert(ctx, &models.Player{
		NBAID: 101, FirstName: "Ana", LastName: "Adams", Position: "G", TeamAbbrev: "AAA",
	}))
}

func statRows(gameID string, periods ...int) []*models.PlayerPeriodStat {
	var rows []*models.PlayerPeriodStat
	for _, period := range periods {
		rows = append(rows, &models.PlayerPeriodStat{
			PlayerNBAID: 101, GameID: gameID, Period: period, TeamAbbrev: "AAA",
			Points: 10 + period, Rebounds: 4, Assists: 3, Minutes: 30, FieldGoalsAttempted: 12, FieldGoalsMade: 5,
		})
	}
	return rows
}

func TestReplaceGameStats(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedGame(t, db, ctx, "g1", 5)

	err := db.Stats.ReplaceGameStats(ctx, "g1", statRows("g1", 0, 1, 2, 3, 4))
	require.NoError(t, err, "Should insert stat rows")

	var count int
	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM player_period_stats WHERE game_id = 'g1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 5, count, "Should have one row per period")

	// Re-ingesting replaces, never appends
	err = db.Stats.ReplaceGameStats(ctx, "g1", statRows("g1", 0, 1, 2, 3, 4))
	require.NoError(t, err, "Re-ingest should succeed")

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM player_period_stats WHERE game_id = 'g1'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 5, count, "Row count must be unchanged after re-ingest")
}

func TestFullyIngestedGameIDs(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedGame(t, db, ctx, "g1", 5)
	seedGame(t, db, ctx, "g2", 6)

	// g1 is complete, g2 is missing two periods
	require.NoError(t, db.Stats.ReplaceGameStats(ctx, "g1", statRows("g1", 0, 1, 2, 3, 4)))
	require.NoError(t, db.Stats.ReplaceGameStats(ctx, "g2", statRows("g2", 0, 1, 2)))

	ingested, err := db.Stats.FullyIngestedGameIDs(ctx, "2023-24")
	require.NoError(t, err)

	assert.Contains(t, ingested, "g1", "Complete game should count as ingested")
	assert.NotContains(t, ingested, "g2", "Partial game must be re-fetched")
}

func TestWideRowsOrderingAndShape(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedGame(t, db, ctx, "g1", 5)
	seedGame(t, db, ctx, "g2", 6)
	require.NoError(t, db.Players.Upsert(ctx, &models.Player{
		NBAID: 202, FirstName: "Bo", LastName: "Burke", Position: "F", TeamAbbrev: "BBB",
	}))

	require.NoError(t, db.Stats.ReplaceGameStats(ctx, "g1", []*models.PlayerPeriodStat{
		{PlayerNBAID: 202, GameID: "g1", Period: 0, TeamAbbrev: "BBB", Points: 9, Minutes: 20, FieldGoalsAttempted: 8, FieldGoalsMade: 4},
		{PlayerNBAID: 101, GameID: "g1", Period: 0, TeamAbbrev: "AAA", Points: 21, Minutes: 33, FieldGoalsAttempted: 16, FieldGoalsMade: 8},
		{PlayerNBAID: 101, GameID: "g1", Period: 1, TeamAbbrev: "AAA", Points: 6, Minutes: 10},
	}))
	require.NoError(t, db.Stats.ReplaceGameStats(ctx, "g2", []*models.PlayerPeriodStat{
		{PlayerNBAID: 101, GameID: "g2", Period: 0, TeamAbbrev: "AAA", Points: 17, Minutes: 30},
	}))

	rows, err := db.Stats.WideRows(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3, "Only the requested period appears")

	// Ordered by player name, then date, then game id
	assert.Equal(t, "Ana Adams", rows[0].PlayerName)
	assert.Equal(t, "g1", rows[0].GameID)
	assert.Equal(t, "Ana Adams", rows[1].PlayerName)
	assert.Equal(t, "g2", rows[1].GameID)
	assert.Equal(t, "Bo Burke", rows[2].PlayerName)

	assert.Equal(t, "AAA", rows[0].PlayerTeam)
	assert.Equal(t, "AAA", rows[0].HomeTeam)
	assert.Equal(t, "BBB", rows[0].AwayTeam)
	assert.Equal(t, 21, rows[0].Points)
	assert.InDelta(t, 0.5, rows[0].FGPct, 1e-9)

	// Zero attempts yields zero, not a division error
	assert.InDelta(t, 0.0, rows[1].FGPct, 1e-9)
}

func TestStatsSummary(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	seedGame(t, db, ctx, "g1", 5)
	require.NoError(t, db.Stats.ReplaceGameStats(ctx, "g1", statRows("g1", 0, 1, 2, 3, 4)))

	summary, err := db.Stats.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Teams)
	assert.Equal(t, 1, summary.Players)
	assert.Equal(t, 1, summary.Games)
	assert.Equal(t, 5, summary.StatRows)
	assert.Equal(t, 1, summary.FullGames)
	assert.Equal(t, 0, summary.IncompleteGames)
	assert.Equal(t, 1, summary.RowsPerPeriod[0])
	assert.Equal(t, 1, summary.RowsPerPeriod[3])
}

func TestTeamAndPlayerUpsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	team := &models.Team{Abbreviation: "AAA", City: "Alpha", Nickname: "Antelopes"}
	require.NoError(t, db.Teams.Upsert(ctx, team))
	assert.NotZero(t, team.ID, "Upsert should return the row id")

	// An update with empty fields must not blank existing data
	require.NoError(t, db.Teams.Upsert(ctx, &models.Team{Abbreviation: "AAA"}))
	got, err := db.Teams.GetByAbbreviation(ctx, "AAA")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.City)
	assert.Equal(t, "Antelopes", got.Nickname)

	player := &models.Player{NBAID: 101, FirstName: "Ana", LastName: "Adams", Position: "G", TeamAbbrev: "AAA"}
	require.NoError(t, db.Players.Upsert(ctx, player))

	// Players change teams mid-season; the upsert follows them
	player.TeamAbbrev = "BBB"
	require.NoError(t, db.Players.Upsert(ctx, player))
	gotPlayer, err := db.Players.GetByNBAID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "BBB", gotPlayer.TeamAbbrev)
}
