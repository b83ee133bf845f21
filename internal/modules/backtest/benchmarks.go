package backtest

import (
	"github.com/aristath/propensity/pkg/formulas"
)

// BenchmarkYears are the fiscal years the benchmark table covers
var BenchmarkYears = []int{2017, 2018, 2019, 2020, 2021, 2022}

// Benchmark is a yearly rate or index return series, in percent
type Benchmark struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Average returns the mean of the yearly values
func (b Benchmark) Average() float64 {
	return formulas.Mean(b.Values)
}

// Benchmark names used by Compare
const (
	KTB3Y  = "국고채 3년"
	KOSPI  = "KOSPI"
	KOSDAQ = "KOSDAQ"
)

var benchmarks = []Benchmark{
	{Name: KTB3Y, Values: []float64{1.80, 2.10, 1.53, 0.99, 1.39, 3.20}},
	{Name: "국고채 5년", Values: []float64{2.00, 2.31, 1.59, 1.23, 1.72, 3.32}},
	{Name: "국고채 10년", Values: []float64{2.28, 2.50, 1.70, 1.50, 2.07, 3.37}},
	{Name: "회사채 3년", Values: []float64{2.33, 2.65, 2.02, 2.13, 2.08, 4.16}},
	{Name: "CD 91일", Values: []float64{1.44, 1.68, 1.69, 0.92, 0.85, 2.49}},
	{Name: "콜금리", Values: []float64{1.26, 1.52, 1.59, 0.70, 0.61, 2.02}},
	{Name: "기준금리", Values: []float64{1.50, 1.75, 1.25, 0.50, 1.00, 3.25}},
	{Name: KOSPI, Values: []float64{21.78, -17.69, 9.34, 32.10, 1.13, -25.17}},
	{Name: KOSDAQ, Values: []float64{26.32, -16.84, 0.07, 43.68, 5.77, -34.55}},
}

// Benchmarks returns a copy of the benchmark table
func Benchmarks() []Benchmark {
	out := make([]Benchmark, len(benchmarks))
	for i, b := range benchmarks {
		out[i] = Benchmark{Name: b.Name, Values: append([]float64(nil), b.Values...)}
	}
	return out
}

// Comparison is the gap between the annualised return and one benchmark average
type Comparison struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
	Delta   float64 `json:"delta_pp"`
}

// Compare returns the annualised figure against the 3-year treasury, KOSDAQ
// and KOSPI averages, in that order. Deltas are in percentage points.
func Compare(annualised float64) []Comparison {
	out := make([]Comparison, 0, 3)
	for _, name := range []string{KTB3Y, KOSDAQ, KOSPI} {
		for _, b := range benchmarks {
			if b.Name == name {
				avg := b.Average()
				out = append(out, Comparison{Name: name, Average: avg, Delta: annualised - avg})
			}
		}
	}
	return out
}
