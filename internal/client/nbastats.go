package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client is the NBA Stats API client. It paces every request with a jittered
// delay so a season-long ingest stays under the provider's throttling radar.
// Transient failures are surfaced as TransientError; the caller owns the
// cool-down/retry ladder.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	jitter     time.Duration
	rng        *rand.Rand
}

// Options configures a Client. Timeout and the jitter window are pass-through
// configuration, not internal policy.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	JitterMin time.Duration
	JitterMax time.Duration
}

// NewClient creates an NBA Stats API client
func NewClient(opts Options) *Client {
	if opts.JitterMin <= 0 {
		opts.JitterMin = 600 * time.Millisecond
	}
	if opts.JitterMax < opts.JitterMin {
		opts.JitterMax = 2 * opts.JitterMin
	}

	return &Client{
		baseURL: opts.BaseURL,
		limiter: rate.NewLimiter(rate.Every(opts.JitterMin), 1),
		jitter:  opts.JitterMax - opts.JitterMin,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// pace blocks until the next request is allowed: the limiter enforces the
// minimum spacing, the random sleep spreads requests across the window.
func (c *Client) pace(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if c.jitter <= 0 {
		return nil
	}
	extra := time.Duration(c.rng.Int63n(int64(c.jitter)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(extra):
		return nil
	}
}

// get performs a single paced GET request. No retries happen here; errors are
// classified so the orchestrator can apply its cool-down ladder.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// stats.nba.com rejects requests without browser-ish headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://www.nba.com/")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making provider request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransientError{Err: fmt.Errorf("provider request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("Provider request successful")
		return body, nil

	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, &TransientError{
			Err: fmt.Errorf("provider returned retryable status %d", resp.StatusCode),
		}

	default:
		return nil, &FatalError{
			Err: fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}
}

// GameLog fetches the league game log for a season: two entries per game,
// one per team side, in schedule order.
func (c *Client) GameLog(ctx context.Context, season string) ([]models.GameLogEntry, error) {
	body, err := c.get(ctx, "leaguegamelog", map[string]string{
		"Season":       season,
		"SeasonType":   "Regular Season",
		"Counter":      "0",
		"Direction":    "ASC",
		"PlayerOrTeam": "T",
		"Sorter":       "DATE",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log: %w", err)
	}

	entries, err := parseGameLog(body)
	if err != nil {
		return nil, &FatalError{Err: fmt.Errorf("failed to parse game log: %w", err)}
	}

	return entries, nil
}

// BoxScore fetches per-player statistics for one game segment. Period 0 is
// the full game; 1-4 select a single quarter via start/end period.
func (c *Client) BoxScore(ctx context.Context, gameID string, startPeriod, endPeriod int) (*models.BoxScore, error) {
	params := map[string]string{
		"GameID":      gameID,
		"StartPeriod": strconv.Itoa(startPeriod),
		"EndPeriod":   strconv.Itoa(endPeriod),
	}

	body, err := c.get(ctx, "boxscoretraditionalv3", params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch box score: %w", err)
	}

	var resp models.BoxScoreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &FatalError{Err: fmt.Errorf("failed to unmarshal box score: %w", err)}
	}
	if resp.BoxScore.GameID == "" {
		return nil, &FatalError{Err: fmt.Errorf("box score payload missing game %s", gameID)}
	}

	return &resp.BoxScore, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
