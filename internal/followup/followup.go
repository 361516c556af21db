package followup

import (
	"math"
	"sort"
	"time"

	"github.com/practicepulse/backend/internal/types"
)

// Dataset is a merged, de-identified appointment extract
type Dataset struct {
	Events []types.AppointmentEvent
}

// Analyze computes the follow-up cohort views for one source window.
//
// The window selects which doctor appointments act as sources; the
// search for each source's next visit always runs over the full
// dataset, so a return visit just outside the window still counts.
// Same-day pairs (gap 0) denote the same clinical episode and are
// never follow-ups; gaps beyond 28 days fall into the no-follow-up
// remainder.
func Analyze(ds *Dataset, window types.SourceWindow) types.CohortResult {
	events := make([]types.AppointmentEvent, len(ds.Events))
	copy(events, ds.Events)
	// Sort order is load-bearing for every next-visit search, so
	// re-sort at the cohort boundary rather than trusting the caller.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	result := types.CohortResult{
		Window:            window,
		TotalAppointments: len(events),
	}
	if len(events) == 0 {
		return result
	}

	histories := make(map[string][]types.AppointmentEvent)
	doctorSet := make(map[string]bool)
	otherSet := make(map[string]bool)
	for _, e := range events {
		histories[e.PatientKey] = append(histories[e.PatientKey], e)
		if e.IsDoctor {
			doctorSet[e.Clinician] = true
			result.DoctorAppointments++
		} else {
			otherSet[e.Clinician] = true
		}
	}
	result.UniquePatients = len(histories)
	result.Doctors = sortedKeys(doctorSet)
	result.OtherClinicians = sortedKeys(otherSet)

	start := windowStart(events, window)
	var sources []types.AppointmentEvent
	for _, e := range events {
		if e.IsDoctor && !e.Date.Before(start) {
			sources = append(sources, e)
		}
	}

	anyDoctor := func(source, candidate types.AppointmentEvent) bool {
		return candidate.IsDoctor
	}
	sameClinician := func(source, candidate types.AppointmentEvent) bool {
		return candidate.IsDoctor && candidate.Clinician == source.Clinician
	}

	result.Overall = bucketize(sources, histories, anyDoctor)
	result.OverallRates = ratesFor(result.Overall, len(sources))
	result.SameClinician = bucketize(sources, histories, sameClinician)
	result.SameClinicianRates = ratesFor(result.SameClinician, len(sources))
	result.ByClinicianSame = perClinician(sources, histories, sameClinician)
	result.ByClinicianAnyDoc = perClinician(sources, histories, anyDoctor)

	// The monthly trend always sources from the full dataset
	var allDoctorVisits []types.AppointmentEvent
	for _, e := range events {
		if e.IsDoctor {
			allDoctorVisits = append(allDoctorVisits, e)
		}
	}
	result.MonthlyTrend = monthlyTrend(allDoctorVisits, histories)

	return result
}

// windowStart resolves the source window's lower bound relative to the
// latest appointment in the dataset. Events must already be sorted.
func windowStart(events []types.AppointmentEvent, window types.SourceWindow) time.Time {
	latest := events[len(events)-1].Date
	switch window {
	case types.Window3Months:
		return latest.AddDate(0, -3, 0)
	case types.Window4Weeks:
		return latest.AddDate(0, 0, -28)
	default:
		return time.Time{}
	}
}

// nextVisitGap finds the first qualifying visit strictly after the
// source date in the patient's full history and returns the gap in
// days, or 0 when no qualifying later visit exists.
func nextVisitGap(source types.AppointmentEvent, history []types.AppointmentEvent, qualifies func(source, candidate types.AppointmentEvent) bool) int {
	for _, candidate := range history {
		if !candidate.Date.After(source.Date) {
			continue
		}
		if !qualifies(source, candidate) {
			continue
		}
		return daysBetween(source.Date, candidate.Date)
	}
	return 0
}

func bucketize(sources []types.AppointmentEvent, histories map[string][]types.AppointmentEvent, qualifies func(source, candidate types.AppointmentEvent) bool) types.FollowUpBuckets {
	var b types.FollowUpBuckets
	for _, source := range sources {
		gap := nextVisitGap(source, histories[source.PatientKey], qualifies)
		switch {
		case gap >= 1 && gap <= 7:
			b.Within7Days++
		case gap >= 8 && gap <= 14:
			b.Within14Days++
		case gap >= 15 && gap <= 28:
			b.Within28Days++
		}
	}
	// The remainder is everything that found no qualifying return
	// within 28 days, the full source count staying the denominator.
	b.NoFollowUp = len(sources) - b.Within7Days - b.Within14Days - b.Within28Days
	return b
}

func perClinician(sources []types.AppointmentEvent, histories map[string][]types.AppointmentEvent, qualifies func(source, candidate types.AppointmentEvent) bool) []types.ClinicianFollowUp {
	byClinician := make(map[string][]types.AppointmentEvent)
	for _, s := range sources {
		byClinician[s.Clinician] = append(byClinician[s.Clinician], s)
	}

	names := sortedKeys2(byClinician)
	out := make([]types.ClinicianFollowUp, 0, len(names))
	for _, name := range names {
		own := byClinician[name]
		patients := make(map[string]bool)
		for _, s := range own {
			patients[s.PatientKey] = true
		}
		buckets := bucketize(own, histories, qualifies)
		out = append(out, types.ClinicianFollowUp{
			Clinician:      name,
			Visits:         len(own),
			UniquePatients: len(patients),
			Buckets:        buckets,
			Rates:          ratesFor(buckets, len(own)),
		})
	}
	return out
}

func monthlyTrend(sources []types.AppointmentEvent, histories map[string][]types.AppointmentEvent) []types.MonthlyFollowUp {
	byMonth := make(map[string][]types.AppointmentEvent)
	for _, s := range sources {
		byMonth[s.Date.Format("2006-01")] = append(byMonth[s.Date.Format("2006-01")], s)
	}

	months := sortedKeys2(byMonth)
	out := make([]types.MonthlyFollowUp, 0, len(months))
	for _, month := range months {
		monthSources := byMonth[month]
		buckets := bucketize(monthSources, histories, func(source, candidate types.AppointmentEvent) bool {
			return candidate.IsDoctor
		})
		out = append(out, types.MonthlyFollowUp{
			Month:        month,
			SourceVisits: len(monthSources),
			Buckets:      buckets,
			Rates:        ratesFor(buckets, len(monthSources)),
		})
	}
	return out
}

// ratesFor expresses buckets as percentages of the full source count,
// 0 when there were no sources.
func ratesFor(b types.FollowUpBuckets, sources int) types.FollowUpRates {
	if sources == 0 {
		return types.FollowUpRates{}
	}
	pct := func(n int) float64 {
		return math.Round(float64(n)/float64(sources)*1000) / 10
	}
	return types.FollowUpRates{
		Within7Pct:  pct(b.Within7Days),
		Within14Pct: pct(b.Within14Days),
		Within28Pct: pct(b.Within28Days),
	}
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys2(m map[string][]types.AppointmentEvent) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
