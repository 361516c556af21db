package aggregator

import (
	"math"
	"sort"
	"time"

	"github.com/practicepulse/backend/internal/taxonomy"
	"github.com/practicepulse/backend/internal/types"
)

// SLAHorizonsHours are the fixed response-time horizons reported in
// every snapshot.
var SLAHorizonsHours = []int{2, 4, 8, 24, 48}

// weekdayOrder fixes iteration Monday through Sunday for day-of-week
// series and peak-day selection.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// BuildSnapshot folds a Contact Record collection into an Analysis
// Snapshot. It is a pure function: identical input yields identical
// output, and nothing is mutated incrementally. listSize is the
// practice list size used for the requests-per-1000 figure; nil or
// non-positive leaves that figure unset.
//
// Rate policy: every percentage is 0 when its denominator is 0.
func BuildSnapshot(records []types.ContactRecord, listSize *int) types.AnalysisSnapshot {
	snap := types.AnalysisSnapshot{
		ByHour: make([]int, 24),
	}

	byAccess := newCounter()
	bySource := newCounter()
	byPref := newCounter()
	byProblem := newCounter()
	byActivity := newCounter()
	bySex := newCounter()

	outcomeCounts := make(map[string]int)
	subtypeCounts := make(map[string]int)
	ageBandCounts := make(map[types.AgeBand]int)
	dayCounts := make(map[time.Weekday]int)
	dateCounts := make(map[string]int)

	var leadTimes, outcomeTimes []float64
	outcomeRecorded := 0

	for _, rec := range records {
		snap.TotalRequests++

		switch rec.Type {
		case types.RequestClinical:
			snap.ClinicalRequests++
		case types.RequestAdmin:
			snap.AdminRequests++
		}
		if rec.IsAppointment {
			snap.AppointmentRequests++
		}
		if rec.IsCompleted {
			snap.CompletedRequests++
		}
		if rec.IsWeekend {
			snap.WeekendRequests++
		}
		if rec.HasOutcome {
			outcomeRecorded++
		}

		outcomeCounts[rec.OutcomeGroup]++
		if rec.AppointmentSubtype != "" {
			subtypeCounts[rec.AppointmentSubtype]++
		}
		ageBandCounts[rec.AgeBand]++

		byAccess.add(rec.AccessMethod)
		bySource.add(rec.SubmissionSource)
		byPref.add(rec.ResponsePreference)
		byProblem.add(rec.ClinicalProblem)
		byActivity.add(rec.AdminActivity)
		bySex.add(rec.Sex)

		if rec.DayOfWeek != nil {
			dayCounts[*rec.DayOfWeek]++
		}
		if rec.HourOfDay != nil && *rec.HourOfDay >= 0 && *rec.HourOfDay < 24 {
			snap.ByHour[*rec.HourOfDay]++
			if rec.DayOfWeek != nil {
				snap.Heatmap[dayIndex(*rec.DayOfWeek)][*rec.HourOfDay]++
			}
		}
		if rec.Submitted != nil {
			dateCounts[rec.Submitted.Format("2006-01-02")]++
		}

		if rec.LeadTimeMins != nil && *rec.LeadTimeMins >= 0 {
			leadTimes = append(leadTimes, *rec.LeadTimeMins)
		}
		if rec.TimeToOutcomeMins != nil && *rec.TimeToOutcomeMins >= 0 {
			outcomeTimes = append(outcomeTimes, *rec.TimeToOutcomeMins)
		}
	}

	snap.AppointmentConversionRate = rate(snap.AppointmentRequests, snap.TotalRequests)
	snap.CompletionRate = rate(snap.CompletedRequests, snap.TotalRequests)
	snap.OutcomeRecordedRate = rate(outcomeRecorded, snap.TotalRequests)

	if listSize != nil && *listSize > 0 {
		per1000 := round1(float64(snap.TotalRequests) / float64(*listSize) * 1000)
		snap.RequestsPer1000 = &per1000
	}

	snap.MedianLeadTimeMins = median(leadTimes)
	snap.MedianTimeToOutcomeMins = median(outcomeTimes)

	snap.OutcomeGroups = taxonomyBreakdown(outcomeCounts)
	snap.AppointmentSubtypes = subtypeBreakdown(subtypeCounts)
	snap.ByAccessMethod = byAccess.ranked()
	snap.BySubmissionSource = bySource.ranked()
	snap.ByResponsePref = byPref.ranked()
	snap.ByClinicalProblem = byProblem.ranked()
	snap.ByAdminActivity = byActivity.ranked()
	snap.BySex = bySex.ranked()
	snap.ByAgeBand = ageBandBreakdown(ageBandCounts)
	snap.ByDayOfWeek = dayBreakdown(dayCounts)
	snap.ByDate = dateSeries(dateCounts)
	snap.Rolling7 = rolling7(snap.ByDate, len(dateCounts))
	snap.SLABuckets = slaBuckets(outcomeTimes)
	snap.PeakDay, snap.PeakHour = peaks(dayCounts, snap.ByHour)

	return snap
}

// rate is numerator over denominator as a percentage, 0 when the
// denominator is 0, rounded to one decimal.
func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// median sorts ascending and takes the element at floor(n/2). For
// even n that is one of the two central elements, never their average;
// downstream consumers depend on that exact tie-break.
func median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	m := sorted[len(sorted)/2]
	return &m
}

// counter is an ordered categorical tally: labels keep first-seen
// order so ranking ties resolve deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if label == "" {
		return
	}
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// ranked returns categories sorted by count descending; equal counts
// keep first-seen order.
func (c *counter) ranked() []types.CategoryCount {
	out := make([]types.CategoryCount, 0, len(c.order))
	for _, label := range c.order {
		out = append(out, types.CategoryCount{Label: label, Count: c.counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// taxonomyBreakdown emits every outcome group in taxonomy order,
// zeros included, with the catch-all last.
func taxonomyBreakdown(counts map[string]int) []types.CategoryCount {
	out := make([]types.CategoryCount, 0, len(taxonomy.OutcomeGroups)+1)
	for _, g := range taxonomy.OutcomeGroups {
		out = append(out, types.CategoryCount{Label: g.Name, Count: counts[g.Name]})
	}
	out = append(out, types.CategoryCount{Label: taxonomy.OutcomeGroupOther, Count: counts[taxonomy.OutcomeGroupOther]})
	return out
}

func subtypeBreakdown(counts map[string]int) []types.CategoryCount {
	out := make([]types.CategoryCount, 0, len(taxonomy.AppointmentSubtypes)+1)
	for _, g := range taxonomy.AppointmentSubtypes {
		out = append(out, types.CategoryCount{Label: g.Name, Count: counts[g.Name]})
	}
	out = append(out, types.CategoryCount{Label: taxonomy.SubtypeOther, Count: counts[taxonomy.SubtypeOther]})
	return out
}

func ageBandBreakdown(counts map[types.AgeBand]int) []types.CategoryCount {
	out := make([]types.CategoryCount, 0, len(types.AllAgeBands))
	for _, band := range types.AllAgeBands {
		out = append(out, types.CategoryCount{Label: string(band), Count: counts[band]})
	}
	return out
}

func dayBreakdown(counts map[time.Weekday]int) []types.CategoryCount {
	out := make([]types.CategoryCount, 0, 7)
	for _, wd := range weekdayOrder {
		out = append(out, types.CategoryCount{Label: wd.String(), Count: counts[wd]})
	}
	return out
}

func dateSeries(counts map[string]int) []types.DateCount {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.DateCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.DateCount{Date: k, Count: counts[k]})
	}
	return out
}

// rolling7 computes the trailing-7-calendar-day average series. It
// needs at least 7 distinct dates with data; the window spans calendar
// days (missing days count zero), not the trailing 7 data points.
func rolling7(series []types.DateCount, distinctDates int) []types.RollingPoint {
	if distinctDates < 7 || len(series) == 0 {
		return nil
	}

	first, err := time.Parse("2006-01-02", series[0].Date)
	if err != nil {
		return nil
	}
	last, err := time.Parse("2006-01-02", series[len(series)-1].Date)
	if err != nil {
		return nil
	}

	byDate := make(map[string]int, len(series))
	for _, p := range series {
		byDate[p.Date] = p.Count
	}

	var out []types.RollingPoint
	for d := first.AddDate(0, 0, 6); !d.After(last); d = d.AddDate(0, 0, 1) {
		sum := 0
		for i := 0; i < 7; i++ {
			sum += byDate[d.AddDate(0, 0, -i).Format("2006-01-02")]
		}
		out = append(out, types.RollingPoint{
			Date:    d.Format("2006-01-02"),
			Average: round1(float64(sum) / 7),
		})
	}
	return out
}

func slaBuckets(outcomeTimes []float64) []types.SLABucket {
	out := make([]types.SLABucket, 0, len(SLAHorizonsHours))
	for _, hours := range SLAHorizonsHours {
		within := 0
		for _, mins := range outcomeTimes {
			if mins <= float64(hours*60) {
				within++
			}
		}
		out = append(out, types.SLABucket{
			HorizonHours: hours,
			WithinPct:    rate(within, len(outcomeTimes)),
		})
	}
	return out
}

// peaks picks the busiest day and hour. Iteration is fixed
// Monday-Sunday and 0-23, so ties resolve to the earlier key.
func peaks(dayCounts map[time.Weekday]int, hourCounts []int) (string, *int) {
	peakDay := ""
	best := 0
	for _, wd := range weekdayOrder {
		if dayCounts[wd] > best {
			best = dayCounts[wd]
			peakDay = wd.String()
		}
	}

	var peakHour *int
	best = 0
	for h, count := range hourCounts {
		if count > best {
			best = count
			hour := h
			peakHour = &hour
		}
	}
	return peakDay, peakHour
}

func dayIndex(wd time.Weekday) int {
	// Monday is row 0; time.Weekday has Sunday as 0
	if wd == time.Sunday {
		return 6
	}
	return int(wd) - 1
}
