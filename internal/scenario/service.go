package scenario

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

// Cache stores recent scenario results keyed by request
type Cache interface {
	GetScenario(ctx context.Context, key string) (*models.ScenarioResponse, error)
	SetScenario(ctx context.Context, key string, resp *models.ScenarioResponse, ttl time.Duration) error
}

// Service evaluates scenario requests against the latest feature table.
// The baseline projection is the player's exponentially weighted recent form
// for the requested stat; a trained model can replace it behind the same
// surface.
type Service struct {
	spread float64
	cache  Cache
	ttl    time.Duration
}

// NewService creates a Service with the given spread
func NewService(spread float64) *Service {
	if spread <= 0 {
		spread = DefaultSpread
	}
	return &Service{spread: spread}
}

// WithCache enables result caching
func (s *Service) WithCache(cache Cache, ttl time.Duration) *Service {
	s.cache = cache
	s.ttl = ttl
	return s
}

// Evaluate scores one request against the feature rows. Rows are assumed to
// be in the engine's output order, so a player's last row is their most
// recent game.
func (s *Service) Evaluate(ctx context.Context, req *models.ScenarioRequest, rows []models.FeatureRow) (*models.ScenarioResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	key := requestKey(req)
	if s.cache != nil {
		if cached, err := s.cache.GetScenario(ctx, key); err == nil {
			return cached, nil
		}
	}

	projection, err := projectionFor(req, rows)
	if err != nil {
		return nil, err
	}

	resp := Score(projection, req.Line, s.spread)

	if s.cache != nil {
		if err := s.cache.SetScenario(ctx, key, resp, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to cache scenario result, continuing")
		}
	}

	return resp, nil
}

// projectionFor pulls the player's most recent feature row and reads the EMA
// for the requested stat.
func projectionFor(req *models.ScenarioRequest, rows []models.FeatureRow) (float64, error) {
	var latest *models.FeatureRow
	for i := range rows {
		if rows[i].PlayerName == req.PlayerName {
			latest = &rows[i]
		}
	}
	if latest == nil {
		return 0, fmt.Errorf("no feature rows for player %q", req.PlayerName)
	}

	var projection float64
	switch strings.ToLower(req.Stat) {
	case "pts", "points":
		projection = latest.PtsEMAL5
	case "reb", "rebounds":
		projection = latest.RebEMAL5
	case "ast", "assists":
		projection = latest.AstEMAL5
	default:
		return 0, fmt.Errorf("unsupported stat %q", req.Stat)
	}

	if math.IsNaN(projection) {
		return 0, fmt.Errorf("insufficient history for player %q", req.PlayerName)
	}
	return projection, nil
}

func requestKey(req *models.ScenarioRequest) string {
	return fmt.Sprintf("%s|%s|%.1f|%d", req.PlayerName, strings.ToLower(req.Stat), req.Line, req.Period)
}
