package api

import (
	"encoding/json"
	"net/http"

	"github.com/practicepulse/backend/internal/benchmark"
	"github.com/practicepulse/backend/internal/metrics"
)

type percentileRequest struct {
	Value      float64   `json:"value"`
	Population []float64 `json:"population"`
}

type percentileResponse struct {
	Percentile *int `json:"percentile"`
}

// HandlePercentile ranks a practice metric against a peer population
//
// POST /internal/benchmark/percentile
func (h *Handlers) HandlePercentile(w http.ResponseWriter, r *http.Request) {
	var req percentileRequest
	if err := json.NewDecoder(limitBody(r)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics.Get().RecordBenchmarkLookup()
	respondJSON(w, http.StatusOK, percentileResponse{
		Percentile: benchmark.Percentile(req.Value, req.Population),
	})
}

type trendRequest struct {
	Current    float64   `json:"current"`
	Historical []float64 `json:"historical"`
}

type trendResponse struct {
	Trend string `json:"trend"`
}

// HandleTrend classifies a current value against its own history
//
// POST /internal/benchmark/trend
func (h *Handlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	var req trendRequest
	if err := json.NewDecoder(limitBody(r)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics.Get().RecordBenchmarkLookup()
	respondJSON(w, http.StatusOK, trendResponse{
		Trend: benchmark.Trend(req.Current, req.Historical),
	})
}
