package models

import (
	"fmt"
	"time"
)

// Game represents one NBA game
type Game struct {
	ID        int       `db:"id"`
	GameID    string    `db:"game_id"`
	Season    string    `db:"season"`
	Date      time.Time `db:"date"`
	HomeTeam  string    `db:"home_team"`
	AwayTeam  string    `db:"away_team"`
	HomeScore int       `db:"home_score"`
	AwayScore int       `db:"away_score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GameLogEntry is one team's line in the league game log. The provider
// returns two entries per game, one per side; the home side carries "vs."
// in its matchup string.
type GameLogEntry struct {
	GameID     string
	Date       time.Time
	TeamAbbrev string
	TeamName   string
	Points     int
	IsHome     bool
}

// ScheduledGame pairs the home and away game-log entries for one game,
// in schedule order.
type ScheduledGame struct {
	GameID string
	Date   time.Time
	Home   GameLogEntry
	Away   GameLogEntry
}

// ToGame converts a scheduled game to the persisted Game model
func (sg *ScheduledGame) ToGame(season string) *Game {
	return &Game{
		GameID:    sg.GameID,
		Season:    season,
		Date:      sg.Date,
		HomeTeam:  sg.Home.TeamAbbrev,
		AwayTeam:  sg.Away.TeamAbbrev,
		HomeScore: sg.Home.Points,
		AwayScore: sg.Away.Points,
	}
}

// CurrentSeasonLabel returns the provider season label ("2025-26") for the
// given date. NBA seasons roll over in October.
func CurrentSeasonLabel(now time.Time) string {
	startYear := now.Year()
	if now.Month() < time.October {
		startYear--
	}
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}
