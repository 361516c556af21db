package types

import "time"

// AppointmentEvent is one clinician-patient visit used in follow-up
// analysis. PatientKey is an opaque hash derived at parse time; the
// raw NHS number is never retained.
type AppointmentEvent struct {
	Clinician  string    `json:"clinician"`
	Date       time.Time `json:"date"`
	PatientKey string    `json:"patientKey"`
	IsDoctor   bool      `json:"isDoctor"`
}

// SourceWindow selects which appointments act as follow-up sources.
// The window never restricts the search for the follow-up target.
type SourceWindow string

const (
	WindowAll      SourceWindow = "all"
	Window3Months  SourceWindow = "3m"
	Window4Weeks   SourceWindow = "4w"
)

// FollowUpBuckets counts revisits by gap length in days. Same-day
// returns (gap 0) denote the same clinical episode and are excluded.
type FollowUpBuckets struct {
	Within7Days  int `json:"within7Days"`  // 1-7 days
	Within14Days int `json:"within14Days"` // 8-14 days
	Within28Days int `json:"within28Days"` // 15-28 days
	NoFollowUp   int `json:"noFollowUp"`
}

// FollowUpRates expresses the buckets as percentages of total sources
type FollowUpRates struct {
	Within7Pct  float64 `json:"within7Pct"`
	Within14Pct float64 `json:"within14Pct"`
	Within28Pct float64 `json:"within28Pct"`
}

// ClinicianFollowUp is one clinician's follow-up breakdown
type ClinicianFollowUp struct {
	Clinician      string          `json:"clinician"`
	Visits         int             `json:"visits"`
	UniquePatients int             `json:"uniquePatients"`
	Buckets        FollowUpBuckets `json:"buckets"`
	Rates          FollowUpRates   `json:"rates"`
}

// MonthlyFollowUp is one calendar month's bucketed follow-up rates
type MonthlyFollowUp struct {
	Month        string          `json:"month"` // YYYY-MM
	SourceVisits int             `json:"sourceVisits"`
	Buckets      FollowUpBuckets `json:"buckets"`
	Rates        FollowUpRates   `json:"rates"`
}

// CohortResult is the full output of the follow-up cohort engine for
// one source window.
type CohortResult struct {
	ID          string       `json:"id,omitempty"`
	Window      SourceWindow `json:"window"`
	GeneratedAt time.Time    `json:"generatedAt,omitempty"`

	TotalAppointments  int      `json:"totalAppointments"`
	DoctorAppointments int      `json:"doctorAppointments"`
	UniquePatients     int      `json:"uniquePatients"`
	Doctors            []string `json:"doctors"`
	OtherClinicians    []string `json:"otherClinicians"`

	Overall            FollowUpBuckets     `json:"overall"`
	OverallRates       FollowUpRates       `json:"overallRates"`
	SameClinician      FollowUpBuckets     `json:"sameClinician"`
	SameClinicianRates FollowUpRates       `json:"sameClinicianRates"`
	ByClinicianSame    []ClinicianFollowUp `json:"byClinicianSame"`
	ByClinicianAnyDoc  []ClinicianFollowUp `json:"byClinicianAnyDoctor"`
	MonthlyTrend       []MonthlyFollowUp   `json:"monthlyTrend"`
}
