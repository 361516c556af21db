package types

import "time"

// CategoryCount is one labelled bucket in a categorical breakdown.
// Breakdowns are carried as ordered slices, not maps, so downstream
// ranking and serialization see a fixed, deterministic order.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DateCount is one calendar date's request count
type DateCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// RollingPoint is one point of the trailing-7-day average series
type RollingPoint struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"` // rounded to one decimal
}

// SLABucket reports the share of requests whose time-to-outcome fell
// within the given horizon.
type SLABucket struct {
	HorizonHours int     `json:"horizonHours"`
	WithinPct    float64 `json:"withinPct"`
}

// AnalysisSnapshot is the full aggregate summary of one Contact Record
// collection. It is recomputed wholesale on every input or filter
// change and never mutated incrementally.
type AnalysisSnapshot struct {
	ID          string    `json:"id,omitempty"`
	GeneratedAt time.Time `json:"generatedAt,omitempty"`

	TotalRequests       int `json:"totalRequests"`
	ClinicalRequests    int `json:"clinicalRequests"`
	AdminRequests       int `json:"adminRequests"`
	AppointmentRequests int `json:"appointmentRequests"`
	CompletedRequests   int `json:"completedRequests"`
	WeekendRequests     int `json:"weekendRequests"`

	// Rates are percentages; 0 when the denominator is 0
	AppointmentConversionRate float64 `json:"appointmentConversionRate"`
	CompletionRate            float64 `json:"completionRate"`
	OutcomeRecordedRate       float64 `json:"outcomeRecordedRate"`

	// RequestsPer1000 depends on an externally supplied practice list
	// size and stays nil when none was given.
	RequestsPer1000 *float64 `json:"requestsPer1000,omitempty"`

	MedianLeadTimeMins      *float64 `json:"medianLeadTimeMins,omitempty"`
	MedianTimeToOutcomeMins *float64 `json:"medianTimeToOutcomeMins,omitempty"`

	OutcomeGroups       []CategoryCount `json:"outcomeGroups"`
	AppointmentSubtypes []CategoryCount `json:"appointmentSubtypes"`
	ByAccessMethod      []CategoryCount `json:"byAccessMethod"`
	BySubmissionSource  []CategoryCount `json:"bySubmissionSource"`
	ByResponsePref      []CategoryCount `json:"byResponsePreference"`
	ByClinicalProblem   []CategoryCount `json:"byClinicalProblem"`
	ByAdminActivity     []CategoryCount `json:"byAdminActivity"`
	BySex               []CategoryCount `json:"bySex"`
	ByAgeBand           []CategoryCount `json:"byAgeBand"`

	// ByDayOfWeek is always Monday..Sunday, ByHour always 0..23,
	// Heatmap always 7x24, zeros included.
	ByDayOfWeek []CategoryCount `json:"byDayOfWeek"`
	ByHour      []int           `json:"byHour"`
	Heatmap     [7][24]int      `json:"heatmap"`

	ByDate     []DateCount    `json:"byDate"`
	Rolling7   []RollingPoint `json:"rolling7Day,omitempty"`
	SLABuckets []SLABucket    `json:"slaBuckets"`

	PeakDay  string `json:"peakDay,omitempty"`
	PeakHour *int   `json:"peakHour,omitempty"`

	DataQuality DataQuality `json:"dataQuality"`
}
