package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Loader reads a tabular source into a prepared Dataset
type Loader struct {
	minFiscalYear int
	log           zerolog.Logger
}

// NewLoader creates a loader keeping fiscal years at or after minFiscalYear
func NewLoader(minFiscalYear int, log zerolog.Logger) *Loader {
	return &Loader{
		minFiscalYear: minFiscalYear,
		log:           log.With().Str("component", "dataset_loader").Logger(),
	}
}

// Load fetches and parses a source
func (l *Loader) Load(ctx context.Context, src Source) (*Dataset, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset %s: %w", src.Name(), err)
	}
	return l.Parse(src.Name(), data)
}

// Parse reads xlsx or csv bytes, chosen by the name's extension
func (l *Loader) Parse(name string, data []byte) (*Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(data)
	case ".csv", ".txt":
		rows, err = readCSV(data)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", path.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", name, err)
	}

	return l.fromRows(name, rows)
}

func (l *Loader) fromRows(name string, rows [][]string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, newSchemaError(name, RequiredColumns)
	}

	index, missing := resolveHeader(rows[0])
	if len(missing) > 0 {
		return nil, newSchemaError(name, missing)
	}

	records := make([]Record, 0, len(rows)-1)
	dropped := 0
	for _, row := range rows[1:] {
		rec, ok := parseRow(row, index)
		if !ok {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	ds := Prepare(records, PrepareOptions{
		Source:        name,
		MinFiscalYear: l.minFiscalYear,
	})
	if dropped > 0 {
		ds.Warnings = append(ds.Warnings, Warning{
			Code:    WarnDroppedRows,
			Message: fmt.Sprintf("%d rows without a company name or fiscal year were dropped", dropped),
		})
	}

	for _, w := range ds.Warnings {
		l.log.Warn().Str("code", w.Code).Str("source", name).Msg(w.Message)
	}
	l.log.Info().
		Str("source", name).
		Str("snapshot_id", ds.ID).
		Int("rows", len(ds.Records)).
		Int("dropped", dropped).
		Str("fingerprint", ds.Fingerprint[:12]).
		Msg("Dataset prepared")

	return ds, nil
}

func parseRow(row []string, index map[Column]int) (Record, bool) {
	cell := func(c Column) string {
		i := index[c]
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	company := cell(ColCompany)
	year := parseNumber(cell(ColFiscalYear))
	if company == "" || math.IsNaN(year) {
		return Record{}, false
	}

	targetClass := -1
	if tc := parseNumber(cell(ColTargetClass)); !math.IsNaN(tc) {
		targetClass = int(tc)
	}

	return Record{
		Company:           company,
		ExchangeCode:      cell(ColExchangeCode),
		FiscalYear:        int(year),
		CAGR:              zeroIfNaN(parseNumber(cell(ColCAGR))),
		Volatility:        zeroIfNaN(parseNumber(cell(ColVolatility))),
		TargetClass:       targetClass,
		InterestCoverage:  parseNumber(cell(ColInterestCoverage)),
		OperatingCashFlow: parseNumber(cell(ColOperatingCashFlow)),
	}, true
}

// parseNumber coerces a cell to a float, returning NaN for anything unparseable
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
