package features

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"nba_props/pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(10, 3)
}

// gameRow builds one (player, game) line. The player's team hosts when home
// is true.
func gameRow(player string, day int, pts int, minutes float64, home bool) models.WideTrainingRow {
	homeTeam, awayTeam := "AAA", "BBB"
	if !home {
		homeTeam, awayTeam = "BBB", "AAA"
	}
	return models.WideTrainingRow{
		Date:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		GameID:     fmt.Sprintf("00224%05d", day),
		PlayerName: player,
		PlayerTeam: "AAA",
		HomeTeam:   homeTeam,
		AwayTeam:   awayTeam,
		Points:     pts,
		Rebounds:   pts / 2,
		Assists:    pts / 4,
		Minutes:    minutes,
		FGPct:      0.5,
	}
}

func TestComputeShiftsBeforeWindow(t *testing.T) {
	rows := []models.WideTrainingRow{
		gameRow("Ana Adams", 1, 10, 30, true),
		gameRow("Ana Adams", 2, 20, 30, true),
		gameRow("Ana Adams", 3, 30, 30, true),
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 3)

	// First game has no history at all
	assert.True(t, math.IsNaN(out[0].PtsL5), "First game must carry no rolling value")
	assert.True(t, math.IsNaN(out[0].PtsEMAL5))

	// Second game sees only the first
	assert.InDelta(t, 10.0, out[1].PtsL5, 1e-9)
	assert.InDelta(t, 10.0, out[1].PtsEMAL5, 1e-9)

	// Third game sees the first two; its own 30 points must not leak in
	assert.InDelta(t, 15.0, out[2].PtsL5, 1e-9)
	assert.InDelta(t, 10.0*2.0/3.0+20.0/3.0, out[2].PtsEMAL5, 1e-9)
}

func TestComputeRollingWindowCaps(t *testing.T) {
	var rows []models.WideTrainingRow
	for day := 1; day <= 8; day++ {
		rows = append(rows, gameRow("Ana Adams", day, day*10, 30, true))
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 8)

	// Game 8's L5 covers games 3-7 only
	assert.InDelta(t, 50.0, out[7].PtsL5, 1e-9)
	// L10 still covers everything available (games 1-7)
	assert.InDelta(t, 40.0, out[7].PtsL10, 1e-9)
}

func TestComputeStdNeedsFiveObservations(t *testing.T) {
	var rows []models.WideTrainingRow
	pts := []int{10, 12, 14, 16, 18, 20, 22}
	for i, p := range pts {
		rows = append(rows, gameRow("Ana Adams", i+1, p, 30, true))
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 7)

	// Games 1-5 have fewer than five prior observations
	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(out[i].PtsStdL10), "game %d should have no std", i+1)
	}

	// Game 6 sees 10,12,14,16,18: sample variance 10
	assert.InDelta(t, math.Sqrt(10), out[5].PtsStdL10, 1e-9)
	assert.False(t, math.IsNaN(out[6].PtsStdL10))
}

func TestComputeGarbageTimeFreezesState(t *testing.T) {
	rows := []models.WideTrainingRow{
		gameRow("Ana Adams", 1, 10, 30, true),
		gameRow("Ana Adams", 2, 20, 30, true),
		// Blowout mop-up: 50 points in 5 minutes must not pollute history
		gameRow("Ana Adams", 3, 50, 5, true),
		gameRow("Ana Adams", 4, 16, 30, true),
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 4)

	// The masked game still receives features from prior games
	assert.InDelta(t, 15.0, out[2].PtsL5, 1e-9)

	// The game after the masked one sees only the two clean games
	assert.InDelta(t, 15.0, out[3].PtsL5, 1e-9)
	ema := 10.0*2.0/3.0 + 20.0/3.0
	assert.InDelta(t, ema, out[3].PtsEMAL5, 1e-9, "EMA state must freeze across masked games")
}

func TestComputeDaysRest(t *testing.T) {
	rows := []models.WideTrainingRow{
		gameRow("Ana Adams", 1, 10, 30, true),
		gameRow("Ana Adams", 2, 12, 30, true),
		gameRow("Ana Adams", 5, 14, 30, true),
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 3)

	assert.Equal(t, 3.0, out[0].DaysRest, "First observed game uses the default rest")
	assert.Equal(t, 1.0, out[1].DaysRest)
	assert.Equal(t, 3.0, out[2].DaysRest)
}

func TestComputeHomeAwayContext(t *testing.T) {
	rows := []models.WideTrainingRow{
		gameRow("Ana Adams", 1, 10, 30, true),
		gameRow("Ana Adams", 2, 12, 30, false),
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 2)

	assert.Equal(t, 1, out[0].IsHome)
	assert.Equal(t, "BBB", out[0].Opponent)
	assert.Equal(t, 0, out[1].IsHome)
	assert.Equal(t, "BBB", out[1].Opponent)
}

func TestComputeOpponentDefenseIsShifted(t *testing.T) {
	// One player per side so team totals equal player points
	rows := []models.WideTrainingRow{
		gameRow("Ana Adams", 1, 10, 30, true),
		gameRow("Ana Adams", 2, 20, 30, true),
		gameRow("Ana Adams", 3, 30, 30, true),
	}

	out := testEngine().Compute(rows)
	require.Len(t, out, 3)

	// BBB has allowed nothing before game 1
	assert.True(t, math.IsNaN(out[0].OppPtsAllowedL10))
	assert.InDelta(t, 10.0, out[1].OppPtsAllowedL10, 1e-9)
	assert.InDelta(t, 15.0, out[2].OppPtsAllowedL10, 1e-9)
}

func TestFilterDropsDNPAndIncompleteRows(t *testing.T) {
	var rows []models.WideTrainingRow
	for day := 1; day <= 7; day++ {
		rows = append(rows, gameRow("Ana Adams", day, day*10, 30, true))
	}
	// A DNP line: present in the input, never in the output
	dnp := gameRow("Ana Adams", 8, 0, 0, true)
	rows = append(rows, dnp)

	engine := testEngine()
	kept := engine.Filter(engine.Compute(rows))

	// Only games 6 and 7 have enough history for every feature
	require.Len(t, kept, 2)
	assert.Equal(t, 60, kept[0].Points)
	assert.Equal(t, 70, kept[1].Points)
	for _, row := range kept {
		assert.Greater(t, row.Minutes, 0.0)
	}
}

func TestFilterKeepsGarbageTimeRows(t *testing.T) {
	var rows []models.WideTrainingRow
	for day := 1; day <= 7; day++ {
		rows = append(rows, gameRow("Ana Adams", day, day*10, 30, true))
	}
	// Played, but under the masking floor: excluded from rolling state yet
	// retained as a training row
	rows = append(rows, gameRow("Ana Adams", 8, 6, 5, true))

	engine := testEngine()
	kept := engine.Filter(engine.Compute(rows))

	require.Len(t, kept, 3)
	last := kept[2]
	assert.Equal(t, 6, last.Points)
	assert.Equal(t, 5.0, last.Minutes)
	// Its features come from the seven clean games before it
	assert.InDelta(t, 50.0, last.PtsL5, 1e-9)
	assert.False(t, math.IsNaN(last.PtsStdL10))
}

func TestComputeIsDeterministic(t *testing.T) {
	var rows []models.WideTrainingRow
	for day := 1; day <= 10; day++ {
		rows = append(rows, gameRow("Ana Adams", day, day*3, 30, day%2 == 0))
		rows = append(rows, gameRow("Bo Burke", day, day*2, 25, day%2 == 1))
	}

	engine := testEngine()
	first := engine.Compute(append([]models.WideTrainingRow(nil), rows...))

	shuffled := append([]models.WideTrainingRow(nil), rows...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second := engine.Compute(shuffled)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].GameID, second[i].GameID)
		assert.Equal(t, first[i].PlayerName, second[i].PlayerName)
		assertSameFloat(t, first[i].PtsL5, second[i].PtsL5)
		assertSameFloat(t, first[i].PtsEMAL5, second[i].PtsEMAL5)
		assertSameFloat(t, first[i].OppPtsAllowedL10, second[i].OppPtsAllowedL10)
	}
}

func assertSameFloat(t *testing.T, a, b float64) {
	t.Helper()
	if math.IsNaN(a) {
		assert.True(t, math.IsNaN(b))
		return
	}
	assert.InDelta(t, a, b, 1e-12)
}

func TestTailMean(t *testing.T) {
	nan := math.NaN()

	assert.True(t, math.IsNaN(tailMean(nil, 5, 1)))
	assert.InDelta(t, 2.0, tailMean([]float64{1, 2, 3}, 5, 1), 1e-9)
	assert.InDelta(t, 4.0, tailMean([]float64{1, 2, 3, 4, 5, 6}, 5, 1), 1e-9)
	assert.InDelta(t, 2.0, tailMean([]float64{1, nan, 3}, 5, 1), 1e-9)
	assert.True(t, math.IsNaN(tailMean([]float64{nan, nan}, 5, 1)))
}

func TestEMASeedsOnFirstValid(t *testing.T) {
	var e ema
	assert.True(t, math.IsNaN(e.value()))

	e.update(math.NaN())
	assert.True(t, math.IsNaN(e.value()), "NaN must not seed the EMA")

	e.update(10)
	assert.InDelta(t, 10.0, e.value(), 1e-9)

	e.update(20)
	assert.InDelta(t, 10.0*2.0/3.0+20.0/3.0, e.value(), 1e-9)

	frozen := e.value()
	e.update(math.NaN())
	assert.InDelta(t, frozen, e.value(), 1e-12, "NaN must not move the EMA")
}
