package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"nba_props/pipeline/internal/metrics"
	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	// WideFileName is used once a wide-format export already exists on disk;
	// MVPFileName is the bootstrap default. A convenience convention, not a
	// contract other components depend on.
	WideFileName = "nba_wide_data.csv"
	MVPFileName  = "nba_mvp_data.csv"

	// ModelReadyFileName receives the feature table
	ModelReadyFileName = "nba_model_ready.csv"
)

// Store is the read surface the exporter flattens
type Store interface {
	WideRows(ctx context.Context, period int) ([]models.WideTrainingRow, error)
}

// Exporter flattens the period store into CSV training tables. Every run
// recomputes the full table; output is deterministic for an unchanged store.
type Exporter struct {
	store Store
	dir   string
}

// New creates an Exporter writing into dir
func New(store Store, dir string) *Exporter {
	return &Exporter{store: store, dir: dir}
}

// Run exports the requested period as a wide CSV and returns the path and
// row count
func (e *Exporter) Run(ctx context.Context, period int) (string, int, error) {
	rows, err := e.store.WideRows(ctx, period)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load wide rows: %w", err)
	}

	path := e.outputPath()
	if err := WriteWideCSV(path, rows); err != nil {
		return "", 0, err
	}

	metrics.RowsExported.Set(float64(len(rows)))
	log.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Int("period", period).
		Msg("Wide export written")

	return path, len(rows), nil
}

// outputPath keeps writing the wide-format name once one exists, otherwise
// starts with the mvp name
func (e *Exporter) outputPath() string {
	wide := filepath.Join(e.dir, WideFileName)
	if _, err := os.Stat(wide); err == nil {
		return wide
	}
	return filepath.Join(e.dir, MVPFileName)
}

// WriteWideCSV writes wide training rows to path, creating parent
// directories as needed. Formatting is fixed so identical inputs produce
// byte-identical files.
func WriteWideCSV(path string, rows []models.WideTrainingRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"date", "game_id", "player_name", "player_team", "home_team", "away_team",
		"pts", "reb", "ast", "min", "fg_pct",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.GameID,
			row.PlayerName,
			row.PlayerTeam,
			row.HomeTeam,
			row.AwayTeam,
			strconv.Itoa(row.Points),
			strconv.Itoa(row.Rebounds),
			strconv.Itoa(row.Assists),
			formatFloat(row.Minutes),
			formatFloat(row.FGPct),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	return f.Close()
}

// WriteFeatureCSV writes the feature table to path
func WriteFeatureCSV(path string, rows []models.FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create feature file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"date", "game_id", "player_name", "player_team", "home_team", "away_team",
		"pts", "reb", "ast", "min", "fg_pct",
		"is_home", "opponent", "days_rest", "opp_pts_allowed_L10",
		"pts_L5", "pts_L10", "pts_ema_L5", "pts_std_L10",
		"reb_L5", "reb_L10", "reb_ema_L5",
		"ast_L5", "ast_L10", "ast_ema_L5",
		"min_L5", "min_L10",
		"fg_pct_L5", "fg_pct_L10",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.GameID,
			row.PlayerName,
			row.PlayerTeam,
			row.HomeTeam,
			row.AwayTeam,
			strconv.Itoa(row.Points),
			strconv.Itoa(row.Rebounds),
			strconv.Itoa(row.Assists),
			formatFloat(row.Minutes),
			formatFloat(row.FGPct),
			strconv.Itoa(row.IsHome),
			row.Opponent,
			formatFloat(row.DaysRest),
			formatFloat(row.OppPtsAllowedL10),
			formatFloat(row.PtsL5),
			formatFloat(row.PtsL10),
			formatFloat(row.PtsEMAL5),
			formatFloat(row.PtsStdL10),
			formatFloat(row.RebL5),
			formatFloat(row.RebL10),
			formatFloat(row.RebEMAL5),
			formatFloat(row.AstL5),
			formatFloat(row.AstL10),
			formatFloat(row.AstEMAL5),
			formatFloat(row.MinL5),
			formatFloat(row.MinL10),
			formatFloat(row.FGPctL5),
			formatFloat(row.FGPctL10),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush features: %w", err)
	}

	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
