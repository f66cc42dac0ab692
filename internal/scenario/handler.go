package scenario

import (
	"context"
	"encoding/json"
	"net/http"

	"nba_props/pipeline/internal/features"
	"nba_props/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

// RowSource supplies the wide rows features are derived from
type RowSource interface {
	WideRows(ctx context.Context, period int) ([]models.WideTrainingRow, error)
}

// Handler serves scenario evaluations on the worker's ops HTTP server.
// Features for the requested period are derived on demand; result caching in
// the Service keeps repeated lines cheap.
type Handler struct {
	svc    *Service
	source RowSource
	engine *features.Engine
}

// NewHandler creates a scenario HTTP handler
func NewHandler(svc *Service, source RowSource, engine *features.Engine) *Handler {
	return &Handler{svc: svc, source: source, engine: engine}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	wide, err := h.source.WideRows(r.Context(), req.Period)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load rows for scenario evaluation")
		http.Error(w, "failed to load feature data", http.StatusInternalServerError)
		return
	}

	resp, err := h.svc.Evaluate(r.Context(), &req, h.engine.Compute(wide))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("Failed to encode scenario response")
	}
}
