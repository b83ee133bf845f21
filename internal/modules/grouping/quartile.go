package grouping

import (
	"math"

	"github.com/aristath/propensity/pkg/formulas"
)

// Quartiles is the number of equal-frequency volatility buckets
const Quartiles = 4

// Bucketize assigns each value an equal-frequency quartile in 1..4. Cut points
// are the 25/50/75th percentiles; a value equal to a cut point falls into the
// lower bucket. With fewer than four distinct values the buckets are meaningless,
// so every value gets quartile 1 and degenerate is true. NaN values get quartile
// 0, which no rule admits.
func Bucketize(values []float64) (quartiles []int, degenerate bool) {
	quartiles = make([]int, len(values))
	finite := formulas.Finite(values)

	if formulas.DistinctCount(finite) < Quartiles {
		for i, v := range values {
			if !math.IsNaN(v) {
				quartiles[i] = 1
			}
		}
		return quartiles, true
	}

	cuts := CutPoints(finite)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		quartiles[i] = quartileOf(v, cuts)
	}
	return quartiles, false
}

// CutPoints returns the inner quartile boundaries of values
func CutPoints(values []float64) []float64 {
	return formulas.Quantiles(values, []float64{0.25, 0.5, 0.75})
}

func quartileOf(v float64, cuts []float64) int {
	for i, c := range cuts {
		if v <= c {
			return i + 1
		}
	}
	return Quartiles
}
