package api

import (
	"net/http"
)

// HandleWipeStore truncates the persisted result tables. Intended for
// local development resets.
//
// DELETE /internal/admin/results
func (h *Handlers) HandleWipeStore(w http.ResponseWriter, r *http.Request) {
	if err := h.store.TruncateAll(); err != nil {
		h.logger.Error().Err(err).Msg("failed to truncate result tables")
		respondError(w, http.StatusInternalServerError, "failed to truncate: %s", err)
		return
	}

	h.logger.Info().Msg("result tables truncated")
	respondJSON(w, http.StatusOK, map[string]string{"message": "result tables truncated"})
}
