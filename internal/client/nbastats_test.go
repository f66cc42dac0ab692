package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Options{
		BaseURL:   serverURL,
		Timeout:   5 * time.Second,
		JitterMin: time.Millisecond,
		JitterMax: 2 * time.Millisecond,
	})
}

const gameLogBody = `{
	"resultSets": [{
		"name": "LeagueGameLog",
		"headers": ["GAME_ID", "GAME_DATE", "TEAM_ABBREVIATION", "TEAM_NAME", "MATCHUP", "PTS"],
		"rowSet": [
			["0022300001", "2023-10-24", "DEN", "Denver Nuggets", "DEN vs. LAL", 119],
			["0022300001", "2023-10-24", "LAL", "Los Angeles Lakers", "LAL @ DEN", 107]
		]
	}]
}`

func TestClientGameLog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leaguegamelog", r.URL.Path)
		assert.Equal(t, "2023-24", r.URL.Query().Get("Season"))
		assert.Equal(t, "T", r.URL.Query().Get("PlayerOrTeam"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"), "Provider rejects requests without a user agent")

		w.Write([]byte(gameLogBody))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	entries, err := c.GameLog(context.Background(), "2023-24")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "0022300001", entries[0].GameID)
	assert.Equal(t, "DEN", entries[0].TeamAbbrev)
	assert.Equal(t, "Denver Nuggets", entries[0].TeamName)
	assert.Equal(t, 119, entries[0].Points)
	assert.True(t, entries[0].IsHome, "\"vs.\" matchup should mark the home side")
	assert.False(t, entries[1].IsHome, "\"@\" matchup should mark the away side")
	assert.Equal(t, 2023, entries[0].Date.Year())
}

func TestClientBoxScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/boxscoretraditionalv3", r.URL.Path)
		assert.Equal(t, "0022300001", r.URL.Query().Get("GameID"))
		assert.Equal(t, "2", r.URL.Query().Get("StartPeriod"))
		assert.Equal(t, "2", r.URL.Query().Get("EndPeriod"))

		w.Write([]byte(`{
			"boxScoreTraditional": {
				"gameId": "0022300001",
				"homeTeam": {
					"teamTricode": "DEN",
					"players": [{
						"personId": 203999,
						"firstName": "Nikola",
						"familyName": "Jokic",
						"position": "C",
						"statistics": {"minutes": "10:00", "points": 8, "reboundsTotal": 4, "assists": 3, "fieldGoalsMade": 3, "fieldGoalsAttempted": 6}
					}]
				},
				"awayTeam": {"teamTricode": "LAL", "players": []}
			}
		}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	box, err := c.BoxScore(context.Background(), "0022300001", 2, 2)
	require.NoError(t, err)

	assert.Equal(t, "0022300001", box.GameID)
	assert.Equal(t, "DEN", box.HomeTeam.TeamTricode)
	require.Len(t, box.HomeTeam.Players, 1)
	assert.Equal(t, 8, box.HomeTeam.Players[0].Statistics.Points)
}

func TestClientThrottledIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.GameLog(context.Background(), "2023-24")
	require.Error(t, err)
	assert.True(t, IsTransient(err), "429 should be classified transient")
	assert.False(t, IsFatal(err))
}

func TestClientRejectedIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("blocked"))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.GameLog(context.Background(), "2023-24")
	require.Error(t, err)
	assert.True(t, IsFatal(err), "403 should be classified fatal")
	assert.False(t, IsTransient(err))
}

func TestClientMalformedBoxScoreIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.BoxScore(context.Background(), "0022300001", 0, 10)
	require.Error(t, err)
	assert.True(t, IsFatal(err), "Payload missing the box score envelope should be fatal")
}

func TestClientConnectionRefusedIsTransient(t *testing.T) {
	// Point at a closed server so the dial fails
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(server.URL)
	_, err := c.GameLog(context.Background(), "2023-24")
	require.Error(t, err)
	assert.True(t, IsTransient(err), "Connection errors should be classified transient")
}

func TestClientHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(gameLogBody))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(server.URL)
	_, err := c.GameLog(ctx, "2023-24")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClientPacesRequests(t *testing.T) {
	var timestamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timestamps = append(timestamps, time.Now())
		w.Write([]byte(gameLogBody))
	}))
	defer server.Close()

	c := NewClient(Options{
		BaseURL:   server.URL,
		Timeout:   5 * time.Second,
		JitterMin: 50 * time.Millisecond,
		JitterMax: 60 * time.Millisecond,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.GameLog(ctx, "2023-24")
		require.NoError(t, err)
	}

	require.Len(t, timestamps, 3)
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, 40*time.Millisecond, "Requests should not be issued back to back")
	}
}

func TestParseGameLogMissingResultSet(t *testing.T) {
	_, err := parseGameLog([]byte(`{"resultSets": [{"name": "SomethingElse"}]}`))
	assert.Error(t, err)
}

func TestParseGameLogSkipsBadRows(t *testing.T) {
	body := `{
		"resultSets": [{
			"name": "LeagueGameLog",
			"headers": ["GAME_ID", "GAME_DATE", "TEAM_ABBREVIATION", "TEAM_NAME", "MATCHUP", "PTS"],
			"rowSet": [
				["", "2023-10-24", "DEN", "Denver Nuggets", "DEN vs. LAL", 119],
				["0022300001", "not-a-date", "LAL", "Los Angeles Lakers", "LAL @ DEN", 107],
				["0022300002", "2023-10-25", "BOS", "Boston Celtics", "BOS vs. NYK", 108]
			]
		}]
	}`

	entries, err := parseGameLog([]byte(body))
	require.NoError(t, err)
	require.Len(t, entries, 1, "Rows without a game id or a parseable date are dropped")
	assert.Equal(t, "0022300002", entries[0].GameID)
}
