package models

// ScenarioRequest documents the serving interface for a single over/under
// scenario. Transport, auth and persistence of results live outside this core.
type ScenarioRequest struct {
	PlayerName string  `json:"player_name"`
	Stat       string  `json:"stat"`
	Line       float64 `json:"line"`
	Period     int     `json:"period"`
	Opponent   string  `json:"opponent"`
	IsHome     bool    `json:"is_home"`
	DaysRest   float64 `json:"days_rest"`
}

// ScenarioResponse is the probability pair returned for a scenario. Ephemeral;
// computed per request and discarded after the response.
type ScenarioResponse struct {
	Projection     float64 `json:"projection"`
	Line           float64 `json:"line"`
	ProbOver       float64 `json:"probability_over"`
	ProbUnder      float64 `json:"probability_under"`
	Recommendation string  `json:"recommendation"`
}
