package ingest

import (
	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

// PairSchedule groups game-log entries (two per game, one per side) into
// scheduled games, keeping first-appearance order. Games missing a side are
// dropped with a warning; they cannot be joined downstream.
func PairSchedule(entries []models.GameLogEntry) []*models.ScheduledGame {
	index := make(map[string]*models.ScheduledGame)
	var order []string

	for _, entry := range entries {
		game, ok := index[entry.GameID]
		if !ok {
			game = &models.ScheduledGame{GameID: entry.GameID, Date: entry.Date}
			index[entry.GameID] = game
			order = append(order, entry.GameID)
		}
		if entry.IsHome {
			game.Home = entry
		} else {
			game.Away = entry
		}
	}

	var schedule []*models.ScheduledGame
	for _, gameID := range order {
		game := index[gameID]
		if game.Home.TeamAbbrev == "" || game.Away.TeamAbbrev == "" {
			log.Warn().
				Str("game_id", gameID).
				Msg("Skipping game with missing home/away log entry")
			continue
		}
		schedule = append(schedule, game)
	}

	return schedule
}

// normalizer flattens box score payloads for one game into persistable rows,
// collecting the teams and players seen along the way.
type normalizer struct {
	game    *models.ScheduledGame
	players map[int]*models.Player
	order   []int
}

func newNormalizer(game *models.ScheduledGame) *normalizer {
	return &normalizer{
		game:    game,
		players: make(map[int]*models.Player),
	}
}

// PeriodRows converts one period's box score into stat rows. Player lines
// without an ID are dropped; they cannot satisfy the uniqueness key.
func (n *normalizer) PeriodRows(box *models.BoxScore, period int) []*models.PlayerPeriodStat {
	var rows []*models.PlayerPeriodStat

	for _, side := range box.Sides() {
		abbrev := side.Team.TeamTricode
		if abbrev == "" {
			if side.IsHome {
				abbrev = n.game.Home.TeamAbbrev
			} else {
				abbrev = n.game.Away.TeamAbbrev
			}
		}

		for i := range side.Team.Players {
			player := &side.Team.Players[i]
			if player.PersonID == 0 {
				log.Debug().
					Str("game_id", n.game.GameID).
					Int("period", period).
					Msg("Dropping player line without provider ID")
				continue
			}

			if _, seen := n.players[player.PersonID]; !seen {
				n.players[player.PersonID] = player.ToPlayer(abbrev)
				n.order = append(n.order, player.PersonID)
			}

			rows = append(rows, player.ToPeriodStat(n.game.GameID, period, abbrev))
		}
	}

	return rows
}

// Players returns every distinct player seen, in first-appearance order
func (n *normalizer) Players() []*models.Player {
	players := make([]*models.Player, 0, len(n.order))
	for _, id := range n.order {
		players = append(players, n.players[id])
	}
	return players
}

// HomeTeam returns the home side as a persistable team
func (n *normalizer) HomeTeam() *models.Team {
	return teamFromEntry(n.game.Home)
}

// AwayTeam returns the away side as a persistable team
func (n *normalizer) AwayTeam() *models.Team {
	return teamFromEntry(n.game.Away)
}

func teamFromEntry(entry models.GameLogEntry) *models.Team {
	city, nickname := models.SplitTeamName(entry.TeamName, entry.TeamAbbrev)
	return &models.Team{
		Abbreviation: entry.TeamAbbrev,
		City:         city,
		Nickname:     nickname,
	}
}
