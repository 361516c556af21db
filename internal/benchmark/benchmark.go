package benchmark

import "math"

// Trend labels returned by Trend. Fixed strings: downstream narrative
// assembly matches on them verbatim.
const (
	TrendIncreasingSignificantly = "Increasing significantly"
	TrendIncreasing              = "Increasing"
	TrendStable                  = "Stable"
	TrendDecreasing              = "Decreasing"
	TrendDecreasingSignificantly = "Decreasing significantly"
	TrendIncreasingFromZero      = "Increasing (from zero)"
	TrendInsufficientData        = "Insufficient data"
)

// Percentile returns the rank percentile of value within population:
// the percentage of the population strictly less than value, rounded
// to the nearest integer. This is a rank, not a distribution
// interpolation. Returns nil for an empty population or non-finite
// inputs; unknown stays distinguishable from zero.
func Percentile(value float64, population []float64) *int {
	if len(population) == 0 || !isFinite(value) {
		return nil
	}

	valid := 0
	below := 0
	for _, v := range population {
		if !isFinite(v) {
			continue
		}
		valid++
		if v < value {
			below++
		}
	}
	if valid == 0 {
		return nil
	}

	p := int(math.Round(float64(below) / float64(valid) * 100))
	return &p
}

// Trend classifies current against the unweighted mean of historical
// values. Thresholds are fixed at plus/minus 5% and 10% change from
// the mean. Fewer than 2 valid historical points yields the
// insufficient-data label; a historical mean of exactly zero cannot
// anchor a percentage change and gets its own labels.
func Trend(current float64, historical []float64) string {
	if !isFinite(current) {
		return TrendInsufficientData
	}

	var valid []float64
	for _, v := range historical {
		if isFinite(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) < 2 {
		return TrendInsufficientData
	}

	sum := 0.0
	for _, v := range valid {
		sum += v
	}
	mean := sum / float64(len(valid))

	if mean == 0 {
		if current > 0 {
			return TrendIncreasingFromZero
		}
		return TrendStable
	}

	change := (current - mean) / mean * 100
	switch {
	case change >= 10:
		return TrendIncreasingSignificantly
	case change >= 5:
		return TrendIncreasing
	case change <= -10:
		return TrendDecreasingSignificantly
	case change <= -5:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
