// Package datasettest provides record builders and encoded sources for tests
// of packages that consume datasets.
package datasettest

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"

	"github.com/aristath/propensity/internal/modules/dataset"
)

// Record builds a healthy security-year record
func Record(company, code string, year int, cagr, volatility float64, targetClass int) dataset.Record {
	return dataset.Record{
		Company:           company,
		ExchangeCode:      code,
		FiscalYear:        year,
		CAGR:              cagr,
		Volatility:        volatility,
		TargetClass:       targetClass,
		InterestCoverage:  5,
		OperatingCashFlow: 1000,
	}
}

// Dataset prepares records with every column present and no year filter
func Dataset(records ...dataset.Record) *dataset.Dataset {
	return dataset.Prepare(records, dataset.PrepareOptions{Source: "fixture"})
}

// Header is the canonical header row in source order
func Header() []string {
	cols := dataset.RequiredColumns
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header()
	}
	return out
}

// CSV encodes records with the canonical Korean headers
func CSV(records ...dataset.Record) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(Header())
	for _, r := range records {
		_ = w.Write(Row(r))
	}
	w.Flush()
	return buf.Bytes()
}

// Row renders a record in RequiredColumns order. NaN becomes an empty cell.
func Row(r dataset.Record) []string {
	return []string{
		r.Company,
		r.ExchangeCode,
		strconv.Itoa(r.FiscalYear),
		formatFloat(r.InterestCoverage),
		formatFloat(r.OperatingCashFlow),
		formatFloat(r.Volatility),
		formatFloat(r.CAGR),
		strconv.Itoa(r.TargetClass),
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
