package api

import (
	"encoding/json"
	"net/http"

	"github.com/practicepulse/backend/internal/metrics"
	"github.com/practicepulse/backend/internal/types"
	"github.com/practicepulse/backend/internal/websocket"
	"github.com/practicepulse/backend/internal/workforce"
)

type capacityRequest struct {
	Roles       map[types.RoleGroup]types.RoleTotal `json:"roles"`
	Activity    types.ActivityCounts                `json:"activity"`
	WorkingDays int                                 `json:"workingDays"`
	Rates       map[types.RoleGroup]float64         `json:"rates"`
}

// HandleCapacity builds the workforce capacity model from staffing
// totals and observed activity. Stateless: nothing is stored, the
// model is returned and pushed to live subscribers.
//
// POST /internal/workforce/capacity
func (h *Handlers) HandleCapacity(w http.ResponseWriter, r *http.Request) {
	var req capacityRequest
	if err := json.NewDecoder(limitBody(r)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Roles) == 0 {
		respondError(w, http.StatusBadRequest, "at least one role total is required")
		return
	}
	for role := range req.Roles {
		if !validRole(role) {
			respondError(w, http.StatusBadRequest, "unknown role group %q", role)
			return
		}
	}

	workingDays := req.WorkingDays
	if workingDays <= 0 {
		workingDays = h.config.WorkingDaysPerMonth
	}

	cfg := workforce.DefaultConfig(workingDays)
	cfg.Rates = req.Rates

	model := workforce.BuildModel(req.Roles, req.Activity, cfg)
	metrics.Get().RecordCapacityModel()
	h.hub.Publish(websocket.KindCapacity, model)

	h.logger.Info().
		Int("roles", len(req.Roles)).
		Int("working_days", workingDays).
		Float64("pressure_score", model.PressureScore).
		Msg("capacity model built")

	respondJSON(w, http.StatusOK, model)
}

func validRole(role types.RoleGroup) bool {
	for _, known := range types.ClinicalRoles {
		if role == known {
			return true
		}
	}
	for _, known := range types.NonClinicalRoles {
		if role == known {
			return true
		}
	}
	return false
}
