// Package dataset loads, cleans and prepares the security-year panel that the
// backtest runs on, and keeps the current snapshot in memory.
package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/propensity/internal/modules/grouping"
	"github.com/aristath/propensity/internal/modules/risk"
)

// ErrNoDataset is returned when no snapshot has been loaded yet
var ErrNoDataset = errors.New("no dataset loaded")

// DefaultMinFiscalYear is the earliest fiscal year kept by the loader
const DefaultMinFiscalYear = 2017

// Record is one security in one fiscal year
type Record struct {
	Company           string     `json:"company" msgpack:"company"`
	ExchangeCode      string     `json:"exchange_code" msgpack:"exchange_code"`
	FiscalYear        int        `json:"fiscal_year" msgpack:"fiscal_year"`
	CAGR              float64    `json:"cagr" msgpack:"cagr"`
	Volatility        float64    `json:"volatility" msgpack:"volatility"`
	TargetClass       int        `json:"target_class" msgpack:"target_class"`
	InterestCoverage  float64    `json:"-" msgpack:"interest_coverage"`
	OperatingCashFlow float64    `json:"-" msgpack:"operating_cash_flow"`
	RiskLevel         risk.Level `json:"risk_level" msgpack:"risk_level"`
	VolQuartile       int        `json:"vol_quartile" msgpack:"vol_quartile"`
}

// SecurityKey identifies the security a record belongs to. The exchange code
// is used when present, otherwise the company name.
func (r Record) SecurityKey() string {
	if code := strings.TrimSpace(r.ExchangeCode); code != "" {
		return "code:" + code
	}
	return "name:" + strings.TrimSpace(r.Company)
}

// Warning is a non-fatal data-sparsity condition
type Warning struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
}

// Warning codes
const (
	WarnDegenerateQuartiles = "degenerate_quartiles"
	WarnNoRecentYears       = "no_recent_years"
	WarnDroppedRows         = "dropped_rows"
	WarnEmptyGroup          = "empty_group"
	WarnMissingColumns      = "missing_columns"
	WarnNoRule              = "no_rule"
)

// Dataset is an immutable prepared snapshot
type Dataset struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
	Records     []Record  `json:"-"`
	Warnings    []Warning `json:"warnings"`

	columns map[Column]bool
}

// Info is the summary of a snapshot exposed over the API
type Info struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
	Rows        int       `json:"rows"`
	Securities  int       `json:"securities"`
	Years       []int     `json:"years"`
	Warnings    []Warning `json:"warnings"`
}

// PrepareOptions controls Prepare
type PrepareOptions struct {
	Source        string
	MinFiscalYear int
	// Columns lists the columns present in the source. Nil means all of them.
	Columns []Column
}

// Prepare filters records to the configured fiscal years, attaches risk levels
// and volatility quartiles, and fingerprints the result. The input slice is not modified.
func Prepare(records []Record, opts PrepareOptions) *Dataset {
	ds := &Dataset{
		ID:       uuid.NewString(),
		Source:   opts.Source,
		LoadedAt: time.Now().UTC(),
		columns:  columnSet(opts.Columns),
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.FiscalYear >= opts.MinFiscalYear {
			kept = append(kept, r)
		}
	}
	if len(records) > 0 && len(kept) == 0 {
		ds.Warnings = append(ds.Warnings, Warning{
			Code:    WarnNoRecentYears,
			Message: "no fiscal years at or after the minimum year; analysis cannot run",
		})
	}

	attachRiskLevels(kept)
	if ds.HasColumns(ColVolatility) {
		if degenerate := attachQuartiles(kept); degenerate && len(kept) > 0 {
			ds.Warnings = append(ds.Warnings, Warning{
				Code:    WarnDegenerateQuartiles,
				Message: "fewer than four distinct volatility values; every record is in quartile 1",
			})
		}
	}

	ds.Records = kept
	ds.Fingerprint = Fingerprint(kept)
	return ds
}

func attachRiskLevels(records []Record) {
	ids := make([]string, len(records))
	observations := make([]risk.Observation, len(records))
	for i, r := range records {
		ids[i] = r.SecurityKey()
		observations[i] = risk.Observation{
			Year:              r.FiscalYear,
			InterestCoverage:  r.InterestCoverage,
			OperatingCashFlow: r.OperatingCashFlow,
		}
	}
	for i, l := range risk.Compute(ids, observations) {
		records[i].RiskLevel = l
	}
}

func attachQuartiles(records []Record) bool {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Volatility
	}
	quartiles, degenerate := grouping.Bucketize(values)
	for i, q := range quartiles {
		records[i].VolQuartile = q
	}
	return degenerate
}

// Fingerprint is a content hash of the records, stable across reloads of identical data
func Fingerprint(records []Record) string {
	h := sha256.New()
	buf := make([]byte, 8)
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		h.Write(buf)
	}
	writeString := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0x1f})
	}

	for _, r := range records {
		writeString(r.Company)
		writeString(r.ExchangeCode)
		writeFloat(float64(r.FiscalYear))
		writeFloat(r.CAGR)
		writeFloat(r.Volatility)
		writeFloat(float64(r.TargetClass))
		writeFloat(r.InterestCoverage)
		writeFloat(r.OperatingCashFlow)
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HasColumns reports whether every given column was present in the source
func (d *Dataset) HasColumns(cols ...Column) bool {
	return len(d.MissingColumns(cols...)) == 0
}

// MissingColumns returns the given columns absent from the source
func (d *Dataset) MissingColumns(cols ...Column) []Column {
	if d.columns == nil {
		return nil
	}
	var missing []Column
	for _, c := range cols {
		if !d.columns[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Years returns the distinct fiscal years in ascending order
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	years := make([]int, 0)
	for _, r := range d.Records {
		if !seen[r.FiscalYear] {
			seen[r.FiscalYear] = true
			years = append(years, r.FiscalYear)
		}
	}
	sort.Ints(years)
	return years
}

// LatestYear returns the most recent fiscal year, or 0 for an empty dataset
func (d *Dataset) LatestYear() int {
	years := d.Years()
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1]
}

// Info summarizes the snapshot
func (d *Dataset) Info() Info {
	securities := make(map[string]bool)
	for _, r := range d.Records {
		securities[r.SecurityKey()] = true
	}
	warnings := d.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	return Info{
		ID:          d.ID,
		Source:      d.Source,
		Fingerprint: d.Fingerprint,
		LoadedAt:    d.LoadedAt,
		Rows:        len(d.Records),
		Securities:  len(securities),
		Years:       d.Years(),
		Warnings:    warnings,
	}
}

func columnSet(cols []Column) map[Column]bool {
	if cols == nil {
		return nil
	}
	m := make(map[Column]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}
