package models

import (
	"time"
)

// Periods tracked per game: 0 is the full game, 1-4 are quarters.
var Periods = []int{0, 1, 2, 3, 4}

// PeriodsPerGame is the number of period rows a fully ingested game carries
// per player appearance.
const PeriodsPerGame = 5

// PlayerPeriodStat is one player's stat line for one segment of one game.
// Unique per (player, game, period); superseded wholesale on re-ingest.
type PlayerPeriodStat struct {
	ID                  int       `db:"id"`
	PlayerNBAID         int       `db:"player_nba_id"`
	GameID              string    `db:"game_id"`
	Period              int       `db:"period"`
	TeamAbbrev          string    `db:"team_abbreviation"`
	Points              int       `db:"pts"`
	Rebounds            int       `db:"reb"`
	Assists             int       `db:"ast"`
	Minutes             float64   `db:"min"`
	FieldGoalsAttempted int       `db:"fga"`
	FieldGoalsMade      int       `db:"fgm"`
	CreatedAt           time.Time `db:"created_at"`
}

// IngestSummary reports the outcome of one orchestrator run
type IngestSummary struct {
	Fetched int `json:"fetched"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// StoreSummary reports ingested data coverage for sanity checks
type StoreSummary struct {
	Teams           int         `json:"teams"`
	Players         int         `json:"players"`
	Games           int         `json:"games"`
	StatRows        int         `json:"stat_rows"`
	FullGames       int         `json:"full_games"`
	IncompleteGames int         `json:"incomplete_games"`
	MinDate         time.Time   `json:"min_date"`
	MaxDate         time.Time   `json:"max_date"`
	RowsPerPeriod   map[int]int `json:"rows_per_period"`
}
