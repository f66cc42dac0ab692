package models

import (
	"strconv"
	"strings"
)

// BoxScoreResponse is the provider's traditional box score payload for one
// game segment (full game or a single quarter).
type BoxScoreResponse struct {
	BoxScore BoxScore `json:"boxScoreTraditional"`
}

// BoxScore holds both sides of a game segment
type BoxScore struct {
	GameID   string       `json:"gameId"`
	HomeTeam BoxScoreTeam `json:"homeTeam"`
	AwayTeam BoxScoreTeam `json:"awayTeam"`
}

// BoxScoreTeam is one team's roster lines for a game segment
type BoxScoreTeam struct {
	TeamID      int              `json:"teamId"`
	TeamCity    string           `json:"teamCity"`
	TeamName    string           `json:"teamName"`
	TeamTricode string           `json:"teamTricode"`
	Players     []BoxScorePlayer `json:"players"`
}

// BoxScorePlayer is one player's line in a box score payload
type BoxScorePlayer struct {
	PersonID   int           `json:"personId"`
	FirstName  string        `json:"firstName"`
	FamilyName string        `json:"familyName"`
	Position   string        `json:"position"`
	Statistics BoxScoreStats `json:"statistics"`
}

// BoxScoreStats carries the tracked statistics for one player line
type BoxScoreStats struct {
	Minutes             string `json:"minutes"`
	Points              int    `json:"points"`
	ReboundsTotal       int    `json:"reboundsTotal"`
	Assists             int    `json:"assists"`
	FieldGoalsMade      int    `json:"fieldGoalsMade"`
	FieldGoalsAttempted int    `json:"fieldGoalsAttempted"`
}

// Sides returns home and away with their home/away flag for iteration
func (b *BoxScore) Sides() []struct {
	Team   BoxScoreTeam
	IsHome bool
} {
	return []struct {
		Team   BoxScoreTeam
		IsHome bool
	}{
		{Team: b.HomeTeam, IsHome: true},
		{Team: b.AwayTeam, IsHome: false},
	}
}

// ParseMinutes converts a provider minutes value ("34:26", "12", "") into
// fractional minutes. Unparseable values collapse to zero.
func ParseMinutes(value string) float64 {
	if value == "" {
		return 0
	}
	if strings.Contains(value, ":") {
		parts := strings.SplitN(value, ":", 2)
		mins, err1 := strconv.ParseFloat(parts[0], 64)
		secs, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0
		}
		return mins + secs/60.0
	}
	mins, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return mins
}

// ToPeriodStat converts a box score player line to the persisted row for
// the given game and period.
func (p *BoxScorePlayer) ToPeriodStat(gameID string, period int, teamAbbrev string) *PlayerPeriodStat {
	return &PlayerPeriodStat{
		PlayerNBAID:         p.PersonID,
		GameID:              gameID,
		Period:              period,
		TeamAbbrev:          teamAbbrev,
		Points:              p.Statistics.Points,
		Rebounds:            p.Statistics.ReboundsTotal,
		Assists:             p.Statistics.Assists,
		Minutes:             ParseMinutes(p.Statistics.Minutes),
		FieldGoalsAttempted: p.Statistics.FieldGoalsAttempted,
		FieldGoalsMade:      p.Statistics.FieldGoalsMade,
	}
}

// ToPlayer converts a box score player line to the persisted Player model
func (p *BoxScorePlayer) ToPlayer(teamAbbrev string) *Player {
	first, last := p.FirstName, p.FamilyName
	if first == "" || last == "" {
		first, last = SplitPlayerName(strings.TrimSpace(first + " " + last))
	}
	position := p.Position
	if position == "" {
		position = "UNK"
	}
	return &Player{
		NBAID:      p.PersonID,
		FirstName:  first,
		LastName:   last,
		Position:   position,
		TeamAbbrev: teamAbbrev,
	}
}
