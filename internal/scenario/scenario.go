package scenario

import (
	"fmt"
	"math"

	"nba_props/pipeline/internal/metrics"
	"nba_props/pipeline/internal/models"
)

// DefaultSpread is the assumed scale of a player stat line around its
// projection. A heuristic constant, not a calibrated variance estimate;
// override through SCENARIO_SPREAD.
const DefaultSpread = 4.0

const (
	leanOverThreshold  = 0.55
	leanUnderThreshold = 0.45
)

// Score converts a projection and a betting line into calibrated over/under
// probabilities. The stat outcome is modeled as projection + spread*Z with a
// logistic CDF, so probabilities respond smoothly to the projection-line gap.
func Score(projection, line, spread float64) *models.ScenarioResponse {
	if spread <= 0 {
		spread = DefaultSpread
	}
	// Stat lines are non-negative; a negative projection is model noise
	if projection < 0 {
		projection = 0
	}

	z := (projection - line) / spread
	probOver := 1.0 / (1.0 + math.Exp(-z))

	metrics.RecordScenarioScore()

	return &models.ScenarioResponse{
		Projection:     projection,
		Line:           line,
		ProbOver:       probOver,
		ProbUnder:      1.0 - probOver,
		Recommendation: recommend(probOver),
	}
}

func recommend(probOver float64) string {
	switch {
	case probOver >= leanOverThreshold:
		return "Lean Over"
	case probOver <= leanUnderThreshold:
		return "Lean Under"
	default:
		return "Toss-up"
	}
}

// ValidateRequest checks the parts of a scenario request the engine depends
// on. The period must exist in the store's period scheme and the line must be
// a positive number.
func ValidateRequest(req *models.ScenarioRequest) error {
	if req.PlayerName == "" {
		return fmt.Errorf("player_name is required")
	}
	if req.Line <= 0 || math.IsNaN(req.Line) || math.IsInf(req.Line, 0) {
		return fmt.Errorf("line must be a positive number, got %v", req.Line)
	}
	if req.Period < 0 || req.Period >= models.PeriodsPerGame {
		return fmt.Errorf("period must be between 0 and %d, got %d", models.PeriodsPerGame-1, req.Period)
	}
	return nil
}
