package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nba_props/pipeline/internal/models"
)

// The game log endpoint still speaks the legacy header/rowSet envelope, so
// rows are positional and have to be mapped through the header index.
type gameLogEnvelope struct {
	ResultSets []struct {
		Name    string          `json:"name"`
		Headers []string        `json:"headers"`
		RowSet  [][]interface{} `json:"rowSet"`
	} `json:"resultSets"`
}

func parseGameLog(body []byte) ([]models.GameLogEntry, error) {
	var envelope gameLogEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game log envelope: %w", err)
	}

	for _, set := range envelope.ResultSets {
		if set.Name != "LeagueGameLog" {
			continue
		}

		index := make(map[string]int, len(set.Headers))
		for i, header := range set.Headers {
			index[header] = i
		}

		var entries []models.GameLogEntry
		for _, row := range set.RowSet {
			gameID := stringAt(row, index, "GAME_ID")
			teamAbbrev := stringAt(row, index, "TEAM_ABBREVIATION")
			if gameID == "" || teamAbbrev == "" {
				continue
			}

			matchup := stringAt(row, index, "MATCHUP")
			date, err := time.Parse("2006-01-02", stringAt(row, index, "GAME_DATE"))
			if err != nil {
				continue
			}

			entries = append(entries, models.GameLogEntry{
				GameID:     gameID,
				Date:       date,
				TeamAbbrev: teamAbbrev,
				TeamName:   stringAt(row, index, "TEAM_NAME"),
				Points:     intAt(row, index, "PTS"),
				IsHome:     strings.Contains(matchup, "vs"),
			})
		}
		return entries, nil
	}

	return nil, fmt.Errorf("game log result set not found")
}

func stringAt(row []interface{}, index map[string]int, key string) string {
	i, ok := index[key]
	if !ok || i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func intAt(row []interface{}, index map[string]int, key string) int {
	i, ok := index[key]
	if !ok || i >= len(row) {
		return 0
	}
	f, _ := row[i].(float64)
	return int(f)
}
