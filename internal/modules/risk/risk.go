// Package risk derives per-security financial-distress levels from consecutive
// years of interest coverage and operating cash flow.
package risk

import (
	"math"
	"sort"
)

// Level is the financial-distress level of a security-year
type Level int

const (
	// Low means neither distress condition was sustained
	Low Level = 0
	// Medium means one of the two conditions was sustained
	Medium Level = 1
	// High means both conditions were sustained
	High Level = 2
)

// WindowSize is the maximum number of trailing periods a condition must hold for
const WindowSize = 3

const (
	// missing coverage is treated as comfortably covered
	missingCoverage = 999.0
	// missing cash flow is treated as positive
	missingCashFlow = 9999.0
)

// Label returns the Korean display label
func (l Level) Label() string {
	switch l {
	case High:
		return "고위험"
	case Medium:
		return "중위험"
	default:
		return "저위험"
	}
}

// Observation is one fiscal year of a security's distress inputs.
// NaN marks a missing value.
type Observation struct {
	Year              int
	InterestCoverage  float64
	OperatingCashFlow float64
}

// CoverageFlag reports whether interest coverage is below 1
func CoverageFlag(o Observation) bool {
	v := o.InterestCoverage
	if math.IsNaN(v) {
		v = missingCoverage
	}
	return v < 1
}

// CashFlowFlag reports whether operating cash flow is negative
func CashFlowFlag(o Observation) bool {
	v := o.OperatingCashFlow
	if math.IsNaN(v) {
		v = missingCashFlow
	}
	return v < 0
}

// Levels computes the level of each observation of a single security.
// The series must already be in ascending year order. A condition is met at a
// period when it fired in every period of the trailing window of
// min(WindowSize, periods seen so far).
func Levels(series []Observation) []Level {
	levels := make([]Level, len(series))
	coverageRun, cashFlowRun := 0, 0

	for i, o := range series {
		coverageRun = extendRun(coverageRun, CoverageFlag(o))
		cashFlowRun = extendRun(cashFlowRun, CashFlowFlag(o))

		window := i + 1
		if window > WindowSize {
			window = WindowSize
		}

		coverageMet := coverageRun >= window
		cashFlowMet := cashFlowRun >= window

		switch {
		case coverageMet && cashFlowMet:
			levels[i] = High
		case coverageMet || cashFlowMet:
			levels[i] = Medium
		default:
			levels[i] = Low
		}
	}
	return levels
}

func extendRun(run int, fired bool) int {
	if fired {
		return run + 1
	}
	return 0
}

// Compute returns a level for every observation, grouping by security id and
// ordering each group by year. The result is aligned with the input order.
func Compute(securityIDs []string, observations []Observation) []Level {
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, id := range securityIDs {
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	levels := make([]Level, len(observations))
	for _, id := range order {
		idx := groups[id]
		sort.SliceStable(idx, func(a, b int) bool {
			return observations[idx[a]].Year < observations[idx[b]].Year
		})

		series := make([]Observation, len(idx))
		for j, i := range idx {
			series[j] = observations[i]
		}
		for j, l := range Levels(series) {
			levels[idx[j]] = l
		}
	}
	return levels
}
