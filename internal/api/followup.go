package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/practicepulse/backend/internal/followup"
	"github.com/practicepulse/backend/internal/metrics"
	"github.com/practicepulse/backend/internal/types"
	"github.com/practicepulse/backend/internal/websocket"
)

type appointmentsRequest struct {
	Files  []string `json:"files"`
	Window string   `json:"window"`
}

// HandleAppointmentsUpload merges one or more appointment extracts and
// runs the follow-up cohort analysis over them.
//
// POST /internal/datasets/appointments
// Body: {"files": ["<csv>", ...], "window": "all" | "3m" | "4w"}
func (h *Handlers) HandleAppointmentsUpload(w http.ResponseWriter, r *http.Request) {
	var req appointmentsRequest
	if err := json.NewDecoder(limitBody(r)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Files) == 0 {
		respondError(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	window := types.SourceWindow(req.Window)
	switch window {
	case "":
		window = types.WindowAll
	case types.WindowAll, types.Window3Months, types.Window4Weeks:
	default:
		respondError(w, http.StatusBadRequest, "window must be one of all, 3m, 4w")
		return
	}

	ds, err := followup.ParseCSV(req.Files...)
	if err != nil {
		metrics.Get().RecordIngestionError()
		respondError(w, http.StatusUnprocessableEntity, "%s", err)
		return
	}

	result := followup.Analyze(ds, window)
	result.ID = uuid.New().String()
	result.GeneratedAt = time.Now().UTC()
	metrics.Get().RecordCohortAnalysis()

	h.cache.PutCohort(result)
	if err := h.store.SaveCohort(result); err != nil {
		h.logger.Error().Err(err).Str("cohort_id", result.ID).Msg("failed to persist cohort result")
	}
	h.hub.Publish(websocket.KindCohort, result)

	h.logger.Info().
		Str("cohort_id", result.ID).
		Str("window", string(window)).
		Int("appointments", result.TotalAppointments).
		Msg("appointment dataset analyzed")

	respondJSON(w, http.StatusOK, result)
}

// HandleGetCohort returns a previously computed cohort result by ID
//
// GET /internal/cohorts/{id}
func (h *Handlers) HandleGetCohort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if result, ok := h.cache.GetCohort(id); ok {
		respondJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.store.GetCohort(id)
	if err != nil {
		h.logger.Error().Err(err).Str("cohort_id", id).Msg("failed to load cohort result")
		respondError(w, http.StatusInternalServerError, "failed to load cohort result")
		return
	}
	if result == nil {
		respondError(w, http.StatusNotFound, "cohort result %s not found", id)
		return
	}

	h.cache.PutCohort(*result)
	respondJSON(w, http.StatusOK, result)
}
