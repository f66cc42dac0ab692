package models

import (
	"strings"
	"time"
)

// Player represents an NBA player
type Player struct {
	ID         int       `db:"id"`
	NBAID      int       `db:"nba_id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Position   string    `db:"position"`
	TeamAbbrev string    `db:"team_abbreviation"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// FullName returns the player's display name
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// SplitPlayerName splits a full player name into first and last components.
// Single-token names become the first name with an empty last name.
func SplitPlayerName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
