package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/practicepulse/backend/internal/types"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Ingestion metrics
	RowsIngestedTotal     int64
	IngestionErrorsTotal  int64
	DataQualityIssueTotal int64

	// Analysis metrics
	SnapshotsBuiltTotal  int64
	CohortAnalysesTotal  int64
	CapacityModelsTotal  int64
	BenchmarkLookupTotal int64
	lastAnalysisDuration time.Duration

	// Dataset distribution from the most recent snapshot
	recordsByType map[types.RequestType]int

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketMessagesTotal       int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			recordsByType:        make(map[types.RequestType]int),
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordIngestion records an admitted dataset and its quality tally
func (m *Metrics) RecordIngestion(dq types.DataQuality) {
	m.mu.Lock()
	m.RowsIngestedTotal += int64(dq.TotalRows)
	m.DataQualityIssueTotal += int64(dq.MissingDates + dq.InvalidDurations + dq.MissingOutcomes + dq.MissingType)
	m.mu.Unlock()
}

// RecordIngestionError increments the rejected-upload counter
func (m *Metrics) RecordIngestionError() {
	m.mu.Lock()
	m.IngestionErrorsTotal++
	m.mu.Unlock()
}

// RecordSnapshot records a completed analysis run and the type mix of
// its dataset
func (m *Metrics) RecordSnapshot(duration time.Duration, records []types.ContactRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SnapshotsBuiltTotal++
	m.lastAnalysisDuration = duration

	m.recordsByType = make(map[types.RequestType]int)
	for _, rec := range records {
		m.recordsByType[rec.Type]++
	}
}

// RecordCohortAnalysis increments the follow-up analysis counter
func (m *Metrics) RecordCohortAnalysis() {
	m.mu.Lock()
	m.CohortAnalysesTotal++
	m.mu.Unlock()
}

// RecordCapacityModel increments the workforce model counter
func (m *Metrics) RecordCapacityModel() {
	m.mu.Lock()
	m.CapacityModelsTotal++
	m.mu.Unlock()
}

// RecordBenchmarkLookup increments the benchmark request counter
func (m *Metrics) RecordBenchmarkLookup() {
	m.mu.Lock()
	m.BenchmarkLookupTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.mu.Lock()
	m.WebSocketMessagesTotal++
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("practicepulse_uptime_seconds", time.Since(m.startTime).Seconds())

		// Ingestion metrics
		write("practicepulse_rows_ingested_total", m.RowsIngestedTotal)
		write("practicepulse_ingestion_errors_total", m.IngestionErrorsTotal)
		write("practicepulse_data_quality_issues_total", m.DataQualityIssueTotal)

		// Analysis metrics
		write("practicepulse_snapshots_built_total", m.SnapshotsBuiltTotal)
		write("practicepulse_cohort_analyses_total", m.CohortAnalysesTotal)
		write("practicepulse_capacity_models_total", m.CapacityModelsTotal)
		write("practicepulse_benchmark_lookups_total", m.BenchmarkLookupTotal)
		write("practicepulse_analysis_duration_seconds", m.lastAnalysisDuration.Seconds())

		// Records by request type
		for reqType, count := range m.recordsByType {
			write("practicepulse_records_by_type", count, "type", string(reqType))
		}

		// WebSocket metrics
		write("practicepulse_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("practicepulse_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("practicepulse_websocket_active_connections", m.activeConnections)
		write("practicepulse_websocket_messages_total", m.WebSocketMessagesTotal)
		write("practicepulse_websocket_errors_total", m.WebSocketErrorsTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("practicepulse_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
	}
}
