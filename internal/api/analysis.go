package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/practicepulse/backend/internal/aggregator"
	"github.com/practicepulse/backend/internal/ingestion"
	"github.com/practicepulse/backend/internal/metrics"
	"github.com/practicepulse/backend/internal/types"
	"github.com/practicepulse/backend/internal/websocket"
)

// HandleTriageUpload ingests one triage extract and returns the full
// analysis snapshot. The raw rows are discarded once the snapshot is
// built; only the derived result is cached and stored.
//
// POST /internal/datasets/triage
// Body: CSV text. Optional query param list_size overrides the
// configured practice list size for the per-1000 rate.
func (h *Handlers) HandleTriageUpload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(limitBody(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var listSize *int
	if raw := r.URL.Query().Get("list_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "list_size must be a positive integer")
			return
		}
		listSize = &n
	} else if h.config != nil && h.config.DefaultListSize > 0 {
		n := h.config.DefaultListSize
		listSize = &n
	}

	start := time.Now()
	result, err := ingestion.ParseTriageCSV(string(body), nil)
	if err != nil {
		metrics.Get().RecordIngestionError()
		respondError(w, http.StatusUnprocessableEntity, "%s", err)
		return
	}
	metrics.Get().RecordIngestion(result.Quality)

	snapshot := aggregator.BuildSnapshot(result.Records, listSize)
	snapshot.ID = uuid.New().String()
	snapshot.GeneratedAt = time.Now().UTC()
	snapshot.DataQuality = result.Quality
	metrics.Get().RecordSnapshot(time.Since(start), result.Records)

	h.cache.PutSnapshot(snapshot)
	if err := h.store.SaveSnapshot(snapshot); err != nil {
		// Storage is best-effort; the caller still gets the result
		h.logger.Error().Err(err).Str("snapshot_id", snapshot.ID).Msg("failed to persist snapshot")
	}
	h.hub.Publish(websocket.KindSnapshot, snapshot)

	h.logger.Info().
		Str("snapshot_id", snapshot.ID).
		Int("rows", result.Quality.TotalRows).
		Dur("duration", time.Since(start)).
		Msg("triage dataset analyzed")

	respondJSON(w, http.StatusOK, snapshot)
}

// HandleGetSnapshot returns a previously computed snapshot by ID,
// serving from cache when possible.
//
// GET /internal/snapshots/{id}
func (h *Handlers) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if snap, ok := h.cache.GetSnapshot(id); ok {
		respondJSON(w, http.StatusOK, snap)
		return
	}

	snap, err := h.store.GetSnapshot(id)
	if err != nil {
		h.logger.Error().Err(err).Str("snapshot_id", id).Msg("failed to load snapshot")
		respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	if snap == nil {
		respondError(w, http.StatusNotFound, "snapshot %s not found", id)
		return
	}

	h.cache.PutSnapshot(*snap)
	respondJSON(w, http.StatusOK, snap)
}

// HandleLatestSnapshot returns the most recently computed snapshot
//
// GET /internal/snapshots/latest
func (h *Handlers) HandleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.cache.LatestSnapshot()
	if !ok {
		respondError(w, http.StatusNotFound, "no snapshot available")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// HandleListSnapshots returns every stored snapshot generated on the
// given date.
//
// GET /internal/snapshots?date=YYYY-MM-DD
func (h *Handlers) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	dateKey := r.URL.Query().Get("date")
	if dateKey == "" {
		respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	if _, err := time.Parse("2006-01-02", dateKey); err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	snaps, err := h.store.ListSnapshots(dateKey)
	if err != nil {
		h.logger.Error().Err(err).Str("date_key", dateKey).Msg("failed to list snapshots")
		respondError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if snaps == nil {
		snaps = []types.AnalysisSnapshot{}
	}
	respondJSON(w, http.StatusOK, snaps)
}
