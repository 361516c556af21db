package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/practicepulse/backend/internal/cache"
	"github.com/practicepulse/backend/internal/config"
	"github.com/practicepulse/backend/internal/storage"
	"github.com/practicepulse/backend/internal/websocket"
)

// Handlers bundles the dependencies shared by all HTTP handlers
type Handlers struct {
	store  storage.Store
	cache  *cache.ResultCache
	hub    *websocket.Hub
	config *config.Config
	logger zerolog.Logger
}

// NewHandlers creates the handler set
func NewHandlers(store storage.Store, resultCache *cache.ResultCache, hub *websocket.Hub, cfg *config.Config, logger zerolog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		cache:  resultCache,
		hub:    hub,
		config: cfg,
		logger: logger,
	}
}

// maxUploadBytes caps request body size at 32 MiB
const maxUploadBytes = 32 << 20

func limitBody(r *http.Request) io.Reader {
	return io.LimitReader(r.Body, maxUploadBytes)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	respondJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}
