package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/practicepulse/backend/internal/classifier"
	"github.com/practicepulse/backend/internal/types"
)

// Result is one admitted triage extract: the classified record set and
// the folded data-quality tally.
type Result struct {
	Records []types.ContactRecord
	Quality types.DataQuality
}

// ParseTriageCSV admits and classifies one triage extract. Format
// problems (empty file, no data rows, header mismatch) fail the whole
// call with a single descriptive error before any row is processed;
// row-level issues never fail the call and are tallied in the result's
// DataQuality instead.
//
// overrides is an optional lowercased outcome-text to outcome-group
// map consulted before the keyword taxonomy.
func ParseTriageCSV(text string, overrides map[string]string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("file is empty")
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read file: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}
	if len(rows) < 2 {
		return nil, errors.New("file contains no data rows")
	}

	cols, err := classifier.ResolveHeaders(rows[0])
	if err != nil {
		return nil, err
	}

	result := &Result{Records: make([]types.ContactRecord, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec, dq := classifier.ClassifyRow(row, cols, overrides)
		result.Records = append(result.Records, rec)
		result.Quality.Add(dq)
	}

	if len(result.Records) == 0 {
		return nil, errors.New("file contains no data rows")
	}
	return result, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
