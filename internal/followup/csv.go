package followup

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/practicepulse/backend/internal/dateparse"
	"github.com/practicepulse/backend/internal/types"
)

// Required appointment-extract columns. First name, surname and
// organisation columns may be present; they are read past and dropped.
const (
	colClinician = "clinician"
	colDate      = "appointment date"
	colNHS       = "nhs number"
)

// columns holds the resolved indices of the required extract columns
type columns struct {
	clinician int
	date      int
	nhs       int
}

// ParseCSV merges one or more appointment CSV texts into a Dataset.
// The header comes from the first text; every text's first line is
// treated as a header and skipped. Data rows are deduplicated by exact
// line text across all inputs. NHS numbers are replaced by an opaque
// hash before the event is materialized; the raw identifier is never
// retained.
//
// A missing required column or an input with no usable data rows is a
// format error: the whole call fails and nothing is partially ingested.
func ParseCSV(texts ...string) (*Dataset, error) {
	if len(texts) == 0 {
		return nil, errors.New("no appointment data supplied")
	}

	firstLines := splitLines(texts[0])
	if len(firstLines) == 0 {
		return nil, errors.New("appointment data is empty")
	}
	header, err := splitLine(firstLines[0])
	if err != nil {
		return nil, fmt.Errorf("malformed header row: %w", err)
	}

	cols := columns{
		clinician: findColumn(header, colClinician),
		date:      findColumn(header, colDate),
		nhs:       findColumn(header, colNHS),
	}
	if cols.clinician < 0 || cols.date < 0 || cols.nhs < 0 {
		return nil, fmt.Errorf("appointment data must contain %q, %q and %q columns", colClinician, colDate, colNHS)
	}

	seen := make(map[string]bool)
	var events []types.AppointmentEvent

	for _, text := range texts {
		lines := splitLines(text)
		if len(lines) == 0 {
			continue
		}
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) == "" || seen[line] {
				continue
			}
			seen[line] = true

			fields, err := splitLine(line)
			if err != nil {
				// A row the CSV reader cannot split is a data-quality
				// casualty, not a fatal error
				continue
			}
			if e, ok := parseEvent(fields, cols); ok {
				events = append(events, e)
			}
		}
	}

	if len(events) == 0 {
		return nil, errors.New("appointment data contains no usable rows")
	}
	return &Dataset{Events: events}, nil
}

func parseEvent(fields []string, cols columns) (types.AppointmentEvent, bool) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	clinician := get(cols.clinician)
	nhs := get(cols.nhs)
	date := dateparse.ParseShortDate(get(cols.date))
	if clinician == "" || nhs == "" || date == nil {
		return types.AppointmentEvent{}, false
	}

	return types.AppointmentEvent{
		Clinician:  clinician,
		Date:       *date,
		PatientKey: patientKey(nhs),
		IsDoctor:   isDoctor(clinician),
	}, true
}

// patientKey derives the opaque per-patient identifier from the NHS
// number. Only the hash ever leaves this function.
func patientKey(nhs string) string {
	normalized := strings.ReplaceAll(strings.ReplaceAll(nhs, " ", ""), "-", "")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}

// isDoctor reports whether the clinician name carries a doctor title
func isDoctor(name string) bool {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return false
	}
	first := strings.TrimSuffix(fields[0], ".")
	return first == "dr"
}

func findColumn(header []string, want string) int {
	for i, h := range header {
		if strings.Contains(strings.ToLower(strings.TrimSpace(h)), want) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func splitLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	return r.Read()
}
