package models

import (
	"strings"
	"time"
)

// Team represents an NBA franchise
type Team struct {
	ID           int       `db:"id"`
	Abbreviation string    `db:"abbreviation"`
	City         string    `db:"city"`
	Nickname     string    `db:"nickname"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// SplitTeamName splits a full team name ("Denver Nuggets") into city and
// nickname. Falls back to the abbreviation when the name is empty.
func SplitTeamName(teamName, abbreviation string) (city, nickname string) {
	if teamName == "" {
		return "", abbreviation
	}
	parts := strings.Fields(teamName)
	if len(parts) == 1 {
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
