package models

import (
	"time"
)

// WideTrainingRow is one (player, game) line flattened from the period store
// with home/away context attached. Recomputed wholesale on every export run.
type WideTrainingRow struct {
	Date       time.Time
	GameID     string
	PlayerName string
	PlayerTeam string
	HomeTeam   string
	AwayTeam   string
	Points     int
	Rebounds   int
	Assists    int
	Minutes    float64
	FGPct      float64
}

// FeatureRow is a WideTrainingRow augmented with leakage-safe rolling, EMA
// and opponent-context features. Every derived value for a row dated T is
// computed from observations dated strictly before T.
type FeatureRow struct {
	WideTrainingRow

	IsHome   int
	Opponent string
	DaysRest float64

	OppPtsAllowedL10 float64

	PtsL5     float64
	PtsL10    float64
	PtsEMAL5  float64
	PtsStdL10 float64

	RebL5    float64
	RebL10   float64
	RebEMAL5 float64

	AstL5    float64
	AstL10   float64
	AstEMAL5 float64

	MinL5  float64
	MinL10 float64

	FGPctL5  float64
	FGPctL10 float64
}
