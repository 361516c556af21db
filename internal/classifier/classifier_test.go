package classifier

import (
	"testing"
	"time"

	"github.com/practicepulse/backend/internal/types"
)

var testHeader = []string{
	"Date submitted", "Date processing started", "Date processing complete",
	"Date outcome recorded", "Type", "Access method", "Submission source",
	"Response preference", "Clinical problem type", "Admin activity type",
	"Outcome", "Sex", "Age",
}

func TestResolveHeaders(t *testing.T) {
	cols, err := ResolveHeaders(testHeader)
	if err != nil {
		t.Fatalf("ResolveHeaders: %v", err)
	}
	if len(cols) != len(ExpectedColumns) {
		t.Errorf("expected %d resolved columns, got %d", len(ExpectedColumns), len(cols))
	}
	if cols[ColOutcome] != 10 {
		t.Errorf("outcome bound to column %d, want 10", cols[ColOutcome])
	}
	if cols[ColOutcomeRecorded] != 3 {
		t.Errorf("outcome recorded bound to column %d, want 3", cols[ColOutcomeRecorded])
	}
	if cols[ColType] != 4 {
		t.Errorf("type bound to column %d, want 4", cols[ColType])
	}
}

func TestResolveHeadersCaseAndSubstring(t *testing.T) {
	header := []string{
		"DATE SUBMITTED (UTC)", "date processing started", "Date Processing Complete",
		"Date outcome recorded", "Request Type", "Access method", "Submission source",
		"Response preference", "Clinical problem", "Admin activity",
		"Outcome", "Sex", "Age",
	}
	if _, err := ResolveHeaders(header); err != nil {
		t.Fatalf("ResolveHeaders: %v", err)
	}
}

func TestResolveHeadersRejectsMismatch(t *testing.T) {
	header := []string{"Clinician", "Appointment date", "NHS number"}
	if _, err := ResolveHeaders(header); err == nil {
		t.Fatal("expected format-mismatch error for appointment headers")
	}
}

func TestClassifyRowComplete(t *testing.T) {
	cols, err := ResolveHeaders(testHeader)
	if err != nil {
		t.Fatalf("ResolveHeaders: %v", err)
	}

	// Monday 4 March 2024
	row := []string{
		"4/3/2024 9:15", "4/3/2024 9:20", "4/3/2024 10:00", "4/3/2024 11:30",
		"Clinical", "Online", "Patient", "Telephone",
		"Skin problem", "", "Telephone appointment booked", "Female", "37",
	}

	rec, dq := ClassifyRow(row, cols, nil)

	if rec.Type != types.RequestClinical {
		t.Errorf("type = %q, want Clinical", rec.Type)
	}
	if rec.OutcomeGroup != "Appointment" {
		t.Errorf("outcome group = %q, want Appointment", rec.OutcomeGroup)
	}
	if rec.AppointmentSubtype != "Telephone" {
		t.Errorf("subtype = %q, want Telephone", rec.AppointmentSubtype)
	}
	if !rec.IsAppointment || !rec.IsCompleted || !rec.HasOutcome {
		t.Errorf("derived flags wrong: %+v", rec)
	}
	if rec.IsWeekend {
		t.Error("Monday flagged as weekend")
	}
	if rec.DayOfWeek == nil || *rec.DayOfWeek != time.Monday {
		t.Errorf("day of week = %v, want Monday", rec.DayOfWeek)
	}
	if rec.HourOfDay == nil || *rec.HourOfDay != 9 {
		t.Errorf("hour = %v, want 9", rec.HourOfDay)
	}
	if rec.LeadTimeMins == nil || *rec.LeadTimeMins != 40 {
		t.Errorf("lead time = %v, want 40", rec.LeadTimeMins)
	}
	if rec.TimeToOutcomeMins == nil || *rec.TimeToOutcomeMins != 90 {
		t.Errorf("time to outcome = %v, want 90", rec.TimeToOutcomeMins)
	}
	if rec.AgeBand != types.AgeBand25to44 {
		t.Errorf("age band = %q, want 25-44", rec.AgeBand)
	}

	want := types.DataQuality{TotalRows: 1}
	if dq != want {
		t.Errorf("data quality = %+v, want %+v", dq, want)
	}
}

func TestClassifyRowMissingEverything(t *testing.T) {
	cols, err := ResolveHeaders(testHeader)
	if err != nil {
		t.Fatalf("ResolveHeaders: %v", err)
	}

	rec, dq := ClassifyRow([]string{"", "", "", "", "", "", "", "", "", "", "", "", ""}, cols, nil)

	if rec.Submitted != nil || rec.DayOfWeek != nil || rec.HourOfDay != nil {
		t.Error("expected nil time-derived fields for empty row")
	}
	if rec.IsWeekend {
		t.Error("weekend flag must be false without a submission timestamp")
	}
	if rec.Type != types.RequestOther {
		t.Errorf("type = %q, want Other", rec.Type)
	}
	if rec.OutcomeGroup != "Other / Unknown" {
		t.Errorf("outcome group = %q, want Other / Unknown", rec.OutcomeGroup)
	}
	if rec.AgeBand != types.AgeBandUnknown {
		t.Errorf("age band = %q, want Unknown", rec.AgeBand)
	}

	want := types.DataQuality{TotalRows: 1, MissingDates: 1, MissingOutcomes: 1, MissingType: 1}
	if dq != want {
		t.Errorf("data quality = %+v, want %+v", dq, want)
	}
}

func TestClassifyRowShortRow(t *testing.T) {
	cols, err := ResolveHeaders(testHeader)
	if err != nil {
		t.Fatalf("ResolveHeaders: %v", err)
	}

	// Row shorter than the header must still classify, never panic
	rec, dq := ClassifyRow([]string{"4/3/2024 9:15", "", "4/3/2024 10:00"}, cols, nil)
	if rec.Submitted == nil {
		t.Error("expected submitted timestamp to parse")
	}
	if rec.LeadTimeMins != nil {
		t.Error("lead time must be nil when the start timestamp is missing")
	}
	if dq.TotalRows != 1 {
		t.Errorf("total rows = %d, want 1", dq.TotalRows)
	}
}

func TestClassifyRowNegativeDuration(t *testing.T) {
	cols, err := ResolveHeaders(testHeader)
	if err != nil {
		t.Fatalf("ResolveHeaders: %v", err)
	}

	// Completion before start: duration discarded, not clamped
	row := []string{
		"4/3/2024 9:15", "4/3/2024 10:00", "4/3/2024 9:30", "",
		"Admin", "", "", "", "", "Fit note", "completed request", "", "",
	}
	rec, dq := ClassifyRow(row, cols, nil)

	if rec.LeadTimeMins != nil {
		t.Errorf("negative lead time must be nil, got %v", *rec.LeadTimeMins)
	}
	if dq.InvalidDurations != 1 {
		t.Errorf("invalid durations = %d, want 1", dq.InvalidDurations)
	}
}
