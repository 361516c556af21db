package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from this epoch; the fractional
// part carries the clock time.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var textMonthPattern = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,})\s+(\d{4})(?:\s+(\d{1,2}):(\d{2}))?$`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// fallbackLayouts are tried last, in order, once every explicit
// pattern has failed.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2/1/2006 15:04:05",
}

// ParseCell converts a raw spreadsheet cell into a timestamp. The
// value may be a numeric serial or free text in one of several known
// formats; patterns are tried in a fixed order and the first success
// wins. Returns nil when nothing matches. Never returns an error;
// data-quality tallying is the caller's concern.
func ParseCell(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// Numeric spreadsheet serial
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(serial)
	}

	// D/M/YYYY H:MM then D/M/YYYY. Slash formats go before the text
	// month and generic layouts because they are ambiguous subsets.
	if t, err := time.Parse("2/1/2006 15:04", s); err == nil {
		return &t
	}
	if t, err := time.Parse("2/1/2006", s); err == nil {
		return &t
	}

	// D Mon YYYY H:MM with the month as a name of 3+ letters
	if t := parseTextMonth(s); t != nil {
		return t
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseShortDate parses a D-Mon-YY token as used in appointment
// extracts, e.g. "3-Feb-24". Two-digit years of 50 and above land in
// the 1900s, the rest in the 2000s.
func ParseShortDate(raw string) *time.Time {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 {
		return nil
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || day < 1 || day > 31 {
		return nil
	}

	month, ok := monthFromName(parts[1])
	if !ok {
		return nil
	}

	yearStr := strings.TrimSpace(parts[2])
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return nil
	}
	if len(yearStr) <= 2 {
		if year >= 50 {
			year += 1900
		} else {
			year += 2000
		}
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject day overflow (e.g. 31-Feb rolled into March)
	if t.Month() != month || t.Day() != day {
		return nil
	}
	return &t
}

func fromSerial(serial float64) *time.Time {
	if serial <= 0 || serial > 400000 {
		return nil
	}
	days := int(serial)
	frac := serial - float64(days)
	minutes := int(frac*24*60 + 0.5)
	t := serialEpoch.AddDate(0, 0, days).Add(time.Duration(minutes) * time.Minute)
	return &t
}

func parseTextMonth(s string) *time.Time {
	m := textMonthPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	day, _ := strconv.Atoi(m[1])
	month, ok := monthFromName(m[2])
	if !ok {
		return nil
	}
	year, _ := strconv.Atoi(m[3])

	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if hour > 23 || minute > 59 {
			return nil
		}
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return nil
	}
	return &t
}

// monthFromName resolves a month name of at least 3 letters,
// case-insensitively, by its first three letters.
func monthFromName(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) < 3 {
		return 0, false
	}
	month, ok := monthsByPrefix[name[:3]]
	return month, ok
}
