package types

import "time"

// RequestType is the coarse triage request category
type RequestType string

const (
	RequestClinical RequestType = "Clinical"
	RequestAdmin    RequestType = "Admin"
	RequestOther    RequestType = "Other"
)

// AgeBand buckets patient age. The order here is the display and
// iteration order used by every demographic breakdown.
type AgeBand string

const (
	AgeBand0to4    AgeBand = "0-4"
	AgeBand5to14   AgeBand = "5-14"
	AgeBand15to24  AgeBand = "15-24"
	AgeBand25to44  AgeBand = "25-44"
	AgeBand45to64  AgeBand = "45-64"
	AgeBand65to74  AgeBand = "65-74"
	AgeBand75to84  AgeBand = "75-84"
	AgeBand85Plus  AgeBand = "85+"
	AgeBandUnknown AgeBand = "Unknown"
)

// AllAgeBands returns all defined age bands in ascending order
var AllAgeBands = []AgeBand{
	AgeBand0to4,
	AgeBand5to14,
	AgeBand15to24,
	AgeBand25to44,
	AgeBand45to64,
	AgeBand65to74,
	AgeBand75to84,
	AgeBand85Plus,
	AgeBandUnknown,
}

// ContactRecord is one normalized, de-identified triage submission.
// No patient name or identifier is ever carried on this struct; rows
// are de-identified at ingestion and the record is immutable afterwards.
type ContactRecord struct {
	Submitted       *time.Time `json:"submitted,omitempty"`
	ProcessStart    *time.Time `json:"processStart,omitempty"`
	ProcessComplete *time.Time `json:"processComplete,omitempty"`
	OutcomeRecorded *time.Time `json:"outcomeRecorded,omitempty"`

	Type               RequestType `json:"type"`
	AccessMethod       string      `json:"accessMethod,omitempty"`
	SubmissionSource   string      `json:"submissionSource,omitempty"`
	ResponsePreference string      `json:"responsePreference,omitempty"`
	ClinicalProblem    string      `json:"clinicalProblem,omitempty"`
	AdminActivity      string      `json:"adminActivity,omitempty"`
	Outcome            string      `json:"outcome,omitempty"`
	Sex                string      `json:"sex,omitempty"`
	AgeBand            AgeBand     `json:"ageBand"`

	OutcomeGroup       string `json:"outcomeGroup"`
	AppointmentSubtype string `json:"appointmentSubtype,omitempty"`

	IsAppointment bool `json:"isAppointment"`
	IsCompleted   bool `json:"isCompleted"`
	HasOutcome    bool `json:"hasOutcome"`
	IsWeekend     bool `json:"isWeekend"`

	// LeadTimeMins is complete minus start; TimeToOutcomeMins is
	// outcome-recorded minus complete. Nil when an endpoint is missing
	// or the difference came out negative.
	LeadTimeMins      *float64 `json:"leadTimeMins,omitempty"`
	TimeToOutcomeMins *float64 `json:"timeToOutcomeMins,omitempty"`

	// DayOfWeek and HourOfDay derive from the submission timestamp only
	DayOfWeek *time.Weekday `json:"dayOfWeek,omitempty"`
	HourOfDay *int          `json:"hourOfDay,omitempty"`
}

// DataQuality tallies row-level issues observed during ingestion.
// Issues are never fatal; the offending field is nulled and the row
// still contributes to every other metric.
type DataQuality struct {
	TotalRows        int `json:"totalRows"`
	MissingDates     int `json:"missingDates"`
	InvalidDurations int `json:"invalidDurations"`
	MissingOutcomes  int `json:"missingOutcomes"`
	MissingType      int `json:"missingType"`
}

// Add folds another tally into this one
func (d *DataQuality) Add(other DataQuality) {
	d.TotalRows += other.TotalRows
	d.MissingDates += other.MissingDates
	d.InvalidDurations += other.InvalidDurations
	d.MissingOutcomes += other.MissingOutcomes
	d.MissingType += other.MissingType
}
