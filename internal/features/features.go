package features

import (
	"math"
	"sort"

	"nba_props/pipeline/internal/metrics"
	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	shortWindow = 5
	longWindow  = 10

	// pts_std_L10 needs enough history to be a usable dispersion estimate
	stdMinObservations = 5

	// EMA over a span of 5 games: alpha = 2 / (span + 1)
	emaAlpha = 1.0 / 3.0
)

// Engine derives leakage-safe model features from wide training rows. Every
// derived value on a row dated T is computed from observations dated strictly
// before T; a row never contributes to its own features.
type Engine struct {
	// MinMinutes is the garbage-time floor. Rows below it are masked: they
	// receive features from prior games but contribute nothing to any
	// player's rolling state.
	MinMinutes float64

	// DefaultRest fills days_rest for a player's first observed game
	DefaultRest float64
}

// NewEngine creates an Engine with the given masking floor and rest default
func NewEngine(minMinutes, defaultRest float64) *Engine {
	return &Engine{MinMinutes: minMinutes, DefaultRest: defaultRest}
}

// Compute derives features for every input row. Rows with insufficient
// history carry NaN in the affected columns; Filter removes them. The output
// order is deterministic: player name, then date, then game id.
func (e *Engine) Compute(rows []models.WideTrainingRow) []models.FeatureRow {
	out := make([]models.FeatureRow, len(rows))
	for i, row := range rows {
		out[i] = models.FeatureRow{WideTrainingRow: row}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerName != out[j].PlayerName {
			return out[i].PlayerName < out[j].PlayerName
		}
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].GameID < out[j].GameID
	})

	for i := range out {
		row := &out[i]
		if row.PlayerTeam == row.HomeTeam {
			row.IsHome = 1
			row.Opponent = row.AwayTeam
		} else {
			row.IsHome = 0
			row.Opponent = row.HomeTeam
		}
	}

	defense := e.opponentDefense(out)
	for i := range out {
		row := &out[i]
		row.OppPtsAllowedL10 = defense[teamGame{row.Opponent, row.GameID}]
	}

	e.playerFeatures(out)

	return out
}

// Filter removes rows unusable for training: DNP rows (zero minutes) and
// rows whose history was too short to derive every feature. Garbage-time
// rows are masked from rolling state in Compute but stay in the training
// table; masking and DNP removal are separate policies. Kept rows are fully
// populated.
func (e *Engine) Filter(rows []models.FeatureRow) []models.FeatureRow {
	var kept []models.FeatureRow
	for _, row := range rows {
		if row.Minutes <= 0 {
			continue
		}
		if hasNaN(&row) {
			continue
		}
		kept = append(kept, row)
	}

	metrics.FeatureRowsComputed.Set(float64(len(kept)))
	log.Info().
		Int("computed", len(rows)).
		Int("kept", len(kept)).
		Msg("Feature rows filtered")

	return kept
}

// playerState accumulates one player's prior observations. Masked games are
// recorded as NaN so they hold a window position without contributing values.
type playerState struct {
	pts, reb, ast, min, fgPct []float64
	ptsEMA, rebEMA, astEMA    ema
	lastDate                  int64
	seen                      bool
}

func (e *Engine) playerFeatures(rows []models.FeatureRow) {
	states := make(map[string]*playerState)

	for i := range rows {
		row := &rows[i]
		state, ok := states[row.PlayerName]
		if !ok {
			state = &playerState{}
			states[row.PlayerName] = state
		}

		// Features first, then this row's own values enter the state
		row.PtsL5 = tailMean(state.pts, shortWindow, 1)
		row.PtsL10 = tailMean(state.pts, longWindow, 1)
		row.PtsEMAL5 = state.ptsEMA.value()
		row.PtsStdL10 = tailStd(state.pts, longWindow, stdMinObservations)

		row.RebL5 = tailMean(state.reb, shortWindow, 1)
		row.RebL10 = tailMean(state.reb, longWindow, 1)
		row.RebEMAL5 = state.rebEMA.value()

		row.AstL5 = tailMean(state.ast, shortWindow, 1)
		row.AstL10 = tailMean(state.ast, longWindow, 1)
		row.AstEMAL5 = state.astEMA.value()

		row.MinL5 = tailMean(state.min, shortWindow, 1)
		row.MinL10 = tailMean(state.min, longWindow, 1)

		row.FGPctL5 = tailMean(state.fgPct, shortWindow, 1)
		row.FGPctL10 = tailMean(state.fgPct, longWindow, 1)

		if state.seen {
			row.DaysRest = float64(row.Date.Unix()-state.lastDate) / 86400.0
		} else {
			row.DaysRest = e.DefaultRest
		}
		state.lastDate = row.Date.Unix()
		state.seen = true

		pts, reb, ast, min, fgPct := math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		if row.Minutes >= e.MinMinutes {
			pts = float64(row.Points)
			reb = float64(row.Rebounds)
			ast = float64(row.Assists)
			min = row.Minutes
			fgPct = row.FGPct
		}

		state.pts = append(state.pts, pts)
		state.reb = append(state.reb, reb)
		state.ast = append(state.ast, ast)
		state.min = append(state.min, min)
		state.fgPct = append(state.fgPct, fgPct)

		state.ptsEMA.update(pts)
		state.rebEMA.update(reb)
		state.astEMA.update(ast)
	}
}

type teamGame struct {
	team   string
	gameID string
}

// opponentDefense computes points allowed by each team over its last ten
// games. Team game totals are aggregated from all rows; masking applies to
// player contributions, not team scoreboards.
func (e *Engine) opponentDefense(rows []models.FeatureRow) map[teamGame]float64 {
	type gameTotal struct {
		gameID string
		date   int64
		pts    float64
	}

	totals := make(map[teamGame]*gameTotal)
	byTeam := make(map[string][]*gameTotal)

	for i := range rows {
		row := &rows[i]
		key := teamGame{row.Opponent, row.GameID}
		total, ok := totals[key]
		if !ok {
			total = &gameTotal{gameID: row.GameID, date: row.Date.Unix()}
			totals[key] = total
			byTeam[row.Opponent] = append(byTeam[row.Opponent], total)
		}
		total.pts += float64(row.Points)
	}

	defense := make(map[teamGame]float64, len(totals))
	for team, games := range byTeam {
		sort.Slice(games, func(i, j int) bool {
			if games[i].date != games[j].date {
				return games[i].date < games[j].date
			}
			return games[i].gameID < games[j].gameID
		})

		var history []float64
		for _, game := range games {
			defense[teamGame{team, game.gameID}] = tailMean(history, longWindow, 1)
			history = append(history, game.pts)
		}
	}

	return defense
}

// ema is an exponentially weighted mean seeded with the first valid
// observation. NaN inputs neither update nor reset the state.
type ema struct {
	val    float64
	seeded bool
}

func (e *ema) update(v float64) {
	if math.IsNaN(v) {
		return
	}
	if !e.seeded {
		e.val = v
		e.seeded = true
		return
	}
	e.val = emaAlpha*v + (1-emaAlpha)*e.val
}

func (e *ema) value() float64 {
	if !e.seeded {
		return math.NaN()
	}
	return e.val
}

// tailMean averages the valid values among the last n entries of history.
// Fewer than minObs valid values yields NaN.
func tailMean(history []float64, n, minObs int) float64 {
	start := len(history) - n
	if start < 0 {
		start = 0
	}

	var sum float64
	var count int
	for _, v := range history[start:] {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}

	if count < minObs {
		return math.NaN()
	}
	return sum / float64(count)
}

// tailStd computes the sample standard deviation of the valid values among
// the last n entries of history.
func tailStd(history []float64, n, minObs int) float64 {
	start := len(history) - n
	if start < 0 {
		start = 0
	}

	var sum float64
	var count int
	for _, v := range history[start:] {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count < minObs || count < 2 {
		return math.NaN()
	}

	mean := sum / float64(count)
	var ss float64
	for _, v := range history[start:] {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}

	return math.Sqrt(ss / float64(count-1))
}

func hasNaN(row *models.FeatureRow) bool {
	for _, v := range []float64{
		row.DaysRest, row.OppPtsAllowedL10,
		row.PtsL5, row.PtsL10, row.PtsEMAL5, row.PtsStdL10,
		row.RebL5, row.RebL10, row.RebEMAL5,
		row.AstL5, row.AstL10, row.AstEMAL5,
		row.MinL5, row.MinL10,
		row.FGPctL5, row.FGPctL10,
	} {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
