// Package formulas provides the small statistical helpers used by the backtest and grouping code.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// MeanFinite is Mean over the values that are neither NaN nor infinite.
// Returns 0 when nothing finite remains.
func MeanFinite(data []float64) float64 {
	return Mean(Finite(data))
}

// Finite returns the finite values of data in their original order.
func Finite(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Max returns the largest value, or 0 for an empty slice.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Max(data)
}

// DistinctCount returns the number of distinct values in data.
func DistinctCount(data []float64) int {
	seen := make(map[float64]struct{}, len(data))
	for _, v := range data {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Quantiles returns the empirical quantiles of data at each probability in ps,
// linearly interpolating between order statistics (numpy's default "linear" method).
func Quantiles(data []float64, ps []float64) []float64 {
	out := make([]float64, len(ps))
	if len(data) == 0 {
		return out
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	for i, p := range ps {
		h := (n - 1) * p
		lo := math.Floor(h)
		hi := math.Ceil(h)
		out[i] = sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
	}
	return out
}
