package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/practicepulse/backend/internal/cache"
	"github.com/practicepulse/backend/internal/config"
	"github.com/practicepulse/backend/internal/storage"
	"github.com/practicepulse/backend/internal/types"
	"github.com/practicepulse/backend/internal/websocket"
)

const triageHeader = "Date submitted,Date processing started,Date processing complete,Date outcome recorded,Type,Access method,Submission source,Response preference,Clinical problem,Admin activity,Outcome,Sex,Age"

func newTestRouter() (*Handlers, *chi.Mux) {
	logger := zerolog.Nop()
	hub := websocket.NewHub(logger)
	go hub.Run()

	h := NewHandlers(
		storage.NewNoopStore(),
		cache.NewResultCache(),
		hub,
		&config.Config{WorkingDaysPerMonth: 20},
		logger,
	)

	r := chi.NewRouter()
	r.Route("/internal", func(r chi.Router) {
		r.Post("/datasets/triage", h.HandleTriageUpload)
		r.Post("/datasets/appointments", h.HandleAppointmentsUpload)
		r.Get("/snapshots", h.HandleListSnapshots)
		r.Get("/snapshots/latest", h.HandleLatestSnapshot)
		r.Get("/snapshots/{id}", h.HandleGetSnapshot)
		r.Get("/cohorts/{id}", h.HandleGetCohort)
		r.Post("/workforce/capacity", h.HandleCapacity)
		r.Post("/benchmark/percentile", h.HandlePercentile)
		r.Post("/benchmark/trend", h.HandleTrend)
		r.Delete("/admin/results", h.HandleWipeStore)
	})
	return h, r
}

func TestTriageUpload(t *testing.T) {
	_, router := newTestRouter()

	body := triageHeader + "\n" +
		"4/3/2024 9:15,4/3/2024 9:20,4/3/2024 10:00,4/3/2024 11:30,Clinical,Online,Patient,Telephone,Skin problem,,Telephone appointment booked,Female,37\n" +
		"4/3/2024 11:00,,,,Admin,Online,Patient,,,Fit note,Completed,Male,52\n"

	req := httptest.NewRequest(http.MethodPost, "/internal/datasets/triage?list_size=8000", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var snap types.AnalysisSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected snapshot ID to be assigned")
	}
	if snap.TotalRequests != 2 {
		t.Errorf("totalRequests = %d, want 2", snap.TotalRequests)
	}
	if snap.RequestsPer1000 == nil {
		t.Error("expected requestsPer1000 with list_size given")
	}
}

func TestTriageUploadRoundTrip(t *testing.T) {
	_, router := newTestRouter()

	body := triageHeader + "\n" +
		"4/3/2024 9:15,,,,Clinical,,,,,,advice given,,\n"

	req := httptest.NewRequest(http.MethodPost, "/internal/datasets/triage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d", rec.Code)
	}

	var snap types.AnalysisSnapshot
	json.Unmarshal(rec.Body.Bytes(), &snap)

	// Fetch the same snapshot back by ID
	req = httptest.NewRequest(http.MethodGet, "/internal/snapshots/"+snap.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var fetched types.AnalysisSnapshot
	json.Unmarshal(rec.Body.Bytes(), &fetched)
	if fetched.ID != snap.ID {
		t.Errorf("fetched ID %s, want %s", fetched.ID, snap.ID)
	}

	// Latest should also serve it
	req = httptest.NewRequest(http.MethodGet, "/internal/snapshots/latest", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("latest status = %d", rec.Code)
	}
}

func TestTriageUploadCarriesDataQuality(t *testing.T) {
	_, router := newTestRouter()

	// Row 1: no submitted date, processing complete before start.
	// Row 2: no type, no outcome.
	body := triageHeader + "\n" +
		",4/3/2024 10:00,4/3/2024 9:00,,Clinical,Online,Patient,,,,advice given,Female,37\n" +
		"4/3/2024 11:00,,,,,Online,Patient,,,,,Male,52\n"

	req := httptest.NewRequest(http.MethodPost, "/internal/datasets/triage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var snap types.AnalysisSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}

	want := types.DataQuality{
		TotalRows:        2,
		MissingDates:     1,
		InvalidDurations: 1,
		MissingOutcomes:  1,
		MissingType:      1,
	}
	if snap.DataQuality != want {
		t.Errorf("dataQuality = %+v, want %+v", snap.DataQuality, want)
	}

	// The stored/cached copy must carry the same tally
	req = httptest.NewRequest(http.MethodGet, "/internal/snapshots/"+snap.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var fetched types.AnalysisSnapshot
	json.Unmarshal(rec.Body.Bytes(), &fetched)
	if fetched.DataQuality != want {
		t.Errorf("fetched dataQuality = %+v, want %+v", fetched.DataQuality, want)
	}
}

func TestListSnapshots(t *testing.T) {
	_, router := newTestRouter()

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"missing date", "", http.StatusBadRequest},
		{"malformed date", "?date=March+5", http.StatusBadRequest},
		{"valid date", "?date=2024-03-05", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/internal/snapshots"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}

	// Valid date with nothing stored yields an empty array, not null
	req := httptest.NewRequest(http.MethodGet, "/internal/snapshots?date=2024-03-05", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var snaps []types.AnalysisSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snaps); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if snaps == nil {
		t.Error("expected empty array, got null")
	}
}

func TestTriageUploadRejectsBadFormat(t *testing.T) {
	_, router := newTestRouter()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"unrecognised header", "Foo,Bar\n1,2\n", http.StatusUnprocessableEntity},
		{"empty body", "", http.StatusUnprocessableEntity},
		{"header only", triageHeader + "\n", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/datasets/triage", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestTriageUploadRejectsBadListSize(t *testing.T) {
	_, router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/internal/datasets/triage?list_size=abc", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	_, router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/internal/snapshots/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAppointmentsUpload(t *testing.T) {
	_, router := newTestRouter()

	csvText := "Clinician,Appointment Date,NHS Number\n" +
		"Dr Smith,5-Mar-24,943 476 5919\n" +
		"Dr Smith,12-Mar-24,943 476 5919\n" +
		"Nurse Jones,6-Mar-24,943 476 5870\n"

	payload, _ := json.Marshal(map[string]interface{}{
		"files":  []string{csvText},
		"window": "all",
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/datasets/appointments", strings.NewReader(string(payload)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var result types.CohortResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if result.ID == "" {
		t.Error("expected cohort ID to be assigned")
	}
	if result.TotalAppointments != 3 {
		t.Errorf("totalAppointments = %d, want 3", result.TotalAppointments)
	}
	if result.DoctorAppointments != 2 {
		t.Errorf("doctorAppointments = %d, want 2", result.DoctorAppointments)
	}

	// Fetch back by ID
	req = httptest.NewRequest(http.MethodGet, "/internal/cohorts/"+result.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get cohort status = %d", rec.Code)
	}
}

func TestAppointmentsUploadValidation(t *testing.T) {
	_, router := newTestRouter()

	tests := []struct {
		name string
		body string
		code int
	}{
		{"not JSON", "csv,data", http.StatusBadRequest},
		{"no files", `{"files":[]}`, http.StatusBadRequest},
		{"bad window", `{"files":["x"],"window":"6m"}`, http.StatusBadRequest},
		{"missing columns", `{"files":["Foo,Bar\n1,2\n"]}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/datasets/appointments", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	_, router := newTestRouter()

	payload := `{
		"roles": {
			"gp_partner": {"wte": 2.0, "headcount": 2},
			"nurse": {"wte": 1.5, "headcount": 2}
		},
		"activity": {"appointments": 1200, "gpAppointments": 900}
	}`

	req := httptest.NewRequest(http.MethodPost, "/internal/workforce/capacity", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var model types.CapacityModel
	if err := json.Unmarshal(rec.Body.Bytes(), &model); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if model.GP.WTE != 2.0 {
		t.Errorf("gp wte = %v, want 2.0", model.GP.WTE)
	}
	// Request omitted workingDays, so the configured default applies
	if model.WorkingDays != 20 {
		t.Errorf("workingDays = %d, want 20 from config", model.WorkingDays)
	}
	if len(model.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(model.Entries))
	}
}

func TestCapacityValidation(t *testing.T) {
	_, router := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{"not JSON", "nope"},
		{"no roles", `{"roles":{}}`},
		{"unknown role", `{"roles":{"astronaut":{"wte":1}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/internal/workforce/capacity", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	_, router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/internal/benchmark/percentile",
		strings.NewReader(`{"value": 5, "population": [1,2,3,4,5,6,7,8,9,10]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp percentileResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Percentile == nil || *resp.Percentile != 40 {
		t.Errorf("percentile = %v, want 40", resp.Percentile)
	}
}

func TestPercentileEmptyPopulation(t *testing.T) {
	_, router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/internal/benchmark/percentile",
		strings.NewReader(`{"value": 5, "population": []}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp percentileResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Percentile != nil {
		t.Errorf("percentile = %v, want null", *resp.Percentile)
	}
}

func TestTrendEndpoint(t *testing.T) {
	_, router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/internal/benchmark/trend",
		strings.NewReader(`{"current": 115, "historical": [100, 100]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp trendResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Trend != "Increasing significantly" {
		t.Errorf("trend = %q", resp.Trend)
	}
}

func TestWipeStore(t *testing.T) {
	_, router := newTestRouter()

	req := httptest.NewRequest(http.MethodDelete, "/internal/admin/results", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
