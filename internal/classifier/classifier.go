package classifier

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/practicepulse/backend/internal/dateparse"
	"github.com/practicepulse/backend/internal/taxonomy"
	"github.com/practicepulse/backend/internal/types"
)

// Canonical column names for the triage extract. Matching against an
// observed header row is by case-insensitive substring in either
// direction, so "Date Submitted (UTC)" and "submitted" both resolve.
const (
	ColSubmitted       = "date submitted"
	ColProcessStart    = "date processing started"
	ColProcessComplete = "date processing complete"
	ColOutcomeRecorded = "date outcome recorded"
	ColType            = "type"
	ColAccessMethod    = "access method"
	ColSource          = "submission source"
	ColResponsePref    = "response preference"
	ColClinicalProblem = "clinical problem"
	ColAdminActivity   = "admin activity"
	ColOutcome         = "outcome"
	ColSex             = "sex"
	ColAge             = "age"
)

// ExpectedColumns is the admission checklist for a triage extract
var ExpectedColumns = []string{
	ColSubmitted,
	ColProcessStart,
	ColProcessComplete,
	ColOutcomeRecorded,
	ColType,
	ColAccessMethod,
	ColSource,
	ColResponsePref,
	ColClinicalProblem,
	ColAdminActivity,
	ColOutcome,
	ColSex,
	ColAge,
}

// minHeaderMatch is the share of ExpectedColumns that must resolve
// before a file is admitted.
const minHeaderMatch = 0.6

// ColumnMap maps canonical column names to indices in the header row
type ColumnMap map[string]int

// ResolveHeaders matches an observed header row against the expected
// checklist. It fails with a format-mismatch error when fewer than 60%
// of the expected columns resolve; no rows are processed in that case.
//
// Longer expected names are resolved first and each header cell is
// claimed at most once, so "outcome" cannot steal the cell that "date
// outcome recorded" should bind to.
func ResolveHeaders(header []string) (ColumnMap, error) {
	cols := make(ColumnMap)
	claimed := make(map[int]bool)

	bySpecificity := make([]string, len(ExpectedColumns))
	copy(bySpecificity, ExpectedColumns)
	sort.SliceStable(bySpecificity, func(i, j int) bool {
		return len(bySpecificity[i]) > len(bySpecificity[j])
	})

	for _, expected := range bySpecificity {
		idx := findColumn(header, expected, claimed)
		if idx >= 0 {
			cols[expected] = idx
			claimed[idx] = true
		}
	}

	if float64(len(cols)) < minHeaderMatch*float64(len(ExpectedColumns)) {
		return nil, fmt.Errorf("file format not recognised: matched %d of %d expected columns", len(cols), len(ExpectedColumns))
	}
	return cols, nil
}

// findColumn returns the index of the first unclaimed header cell
// matching the expected name by substring in either direction, or -1.
func findColumn(header []string, expected string, claimed map[int]bool) int {
	for i, h := range header {
		if claimed[i] {
			continue
		}
		cell := strings.ToLower(strings.TrimSpace(h))
		if cell == "" {
			continue
		}
		if strings.Contains(cell, expected) || strings.Contains(expected, cell) {
			return i
		}
	}
	return -1
}

// ClassifyRow converts one raw extract row into a de-identified
// ContactRecord plus a DataQuality delta for the caller to fold. It is
// total: any structurally valid row yields a record, with missing or
// invalid fields nulled and tallied rather than rejected.
func ClassifyRow(row []string, cols ColumnMap, overrides map[string]string) (types.ContactRecord, types.DataQuality) {
	dq := types.DataQuality{TotalRows: 1}

	get := func(col string) string {
		idx, ok := cols[col]
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rec := types.ContactRecord{
		AccessMethod:       get(ColAccessMethod),
		SubmissionSource:   get(ColSource),
		ResponsePreference: get(ColResponsePref),
		ClinicalProblem:    get(ColClinicalProblem),
		AdminActivity:      get(ColAdminActivity),
		Outcome:            get(ColOutcome),
		Sex:                get(ColSex),
	}

	rec.Submitted = dateparse.ParseCell(get(ColSubmitted))
	rec.ProcessStart = dateparse.ParseCell(get(ColProcessStart))
	rec.ProcessComplete = dateparse.ParseCell(get(ColProcessComplete))
	rec.OutcomeRecorded = dateparse.ParseCell(get(ColOutcomeRecorded))
	if rec.Submitted == nil {
		dq.MissingDates++
	}

	rec.Type = classifyType(get(ColType), &dq)

	if rec.Outcome == "" {
		dq.MissingOutcomes++
	}
	rec.OutcomeGroup = taxonomy.ClassifyOutcome(rec.Outcome, overrides)
	rec.IsAppointment = rec.OutcomeGroup == taxonomy.OutcomeGroupAppointment
	if rec.IsAppointment {
		rec.AppointmentSubtype = taxonomy.ClassifySubtype(rec.Outcome)
	}

	rec.IsCompleted = rec.ProcessComplete != nil
	rec.HasOutcome = rec.OutcomeRecorded != nil

	rec.LeadTimeMins = durationMins(rec.ProcessStart, rec.ProcessComplete, &dq)
	rec.TimeToOutcomeMins = durationMins(rec.ProcessComplete, rec.OutcomeRecorded, &dq)

	rec.AgeBand = ageBand(get(ColAge))

	if rec.Submitted != nil {
		wd := rec.Submitted.Weekday()
		hour := rec.Submitted.Hour()
		rec.DayOfWeek = &wd
		rec.HourOfDay = &hour
		rec.IsWeekend = wd == time.Saturday || wd == time.Sunday
	}

	return rec, dq
}

func classifyType(raw string, dq *types.DataQuality) types.RequestType {
	if raw == "" {
		dq.MissingType++
		return types.RequestOther
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "clinical") || strings.Contains(lower, "medical"):
		return types.RequestClinical
	case strings.Contains(lower, "admin"):
		return types.RequestAdmin
	default:
		return types.RequestOther
	}
}

// durationMins computes to-from in minutes. Missing endpoints yield
// nil silently; a negative result is tallied as an invalid duration
// and discarded, never clamped to zero.
func durationMins(from, to *time.Time, dq *types.DataQuality) *float64 {
	if from == nil || to == nil {
		return nil
	}
	mins := to.Sub(*from).Minutes()
	if mins < 0 {
		dq.InvalidDurations++
		return nil
	}
	return &mins
}

func ageBand(raw string) types.AgeBand {
	if raw == "" {
		return types.AgeBandUnknown
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return types.AgeBandUnknown
	}
	return taxonomy.AgeBandFor(age)
}
