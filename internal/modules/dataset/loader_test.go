package dataset

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aristath/propensity/internal/modules/risk"
)

const koreanHeader = "회사명,거래소코드,회계년도,이자보상배율(이자비용),영업활동으로 인한 현금흐름(*)(천원),연간변동성,CAGR,target_class"

func newLoader() *Loader {
	return NewLoader(DefaultMinFiscalYear, zerolog.Nop())
}

func TestLoader_ParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		koreanHeader,
		`삼성전자,005930,2020,12.5,"1,200",0.25,8.5,0`,
		`삼성전자,005930,2021,11.0,900,0.22,7.1,0`,
		`카카오,035720,2021,0.5,-10,0.45,,2`,
		`,000000,2021,1,1,0.1,1,1`,
		`무연도,000001,,1,1,0.1,1,1`,
		`옛날회사,000002,2015,1,1,0.1,1,1`,
		`미분류,000003,2021,n/a,,0.3,3.3,`,
	}, "\n")

	ds, err := newLoader().Parse("stock_dataset.csv", []byte(csv))
	require.NoError(t, err)

	require.Len(t, ds.Records, 4)
	assert.Equal(t, "stock_dataset.csv", ds.Source)
	assert.NotEmpty(t, ds.ID)
	assert.Len(t, ds.Fingerprint, 64)
	assert.Equal(t, []int{2020, 2021}, ds.Years())
	assert.Equal(t, 2021, ds.LatestYear())

	first := ds.Records[0]
	assert.Equal(t, "삼성전자", first.Company)
	assert.Equal(t, "005930", first.ExchangeCode)
	assert.Equal(t, 1200.0, first.OperatingCashFlow)

	kakao := ds.Records[2]
	assert.Equal(t, 0.0, kakao.CAGR, "missing CAGR is zero")
	assert.Equal(t, risk.High, kakao.RiskLevel)

	unclassified := ds.Records[3]
	assert.Equal(t, -1, unclassified.TargetClass)
	assert.True(t, math.IsNaN(unclassified.InterestCoverage))
	assert.Equal(t, risk.Low, unclassified.RiskLevel)

	var codes []string
	for _, w := range ds.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnDroppedRows)
}

func TestLoader_EnglishAliases(t *testing.T) {
	csv := "Company,ticker,year,interest_coverage,operating_cash_flow,volatility,cagr,target_class\n" +
		"Acme,A1,2019,3,100,0.1,5,0\n"

	ds, err := newLoader().Parse("data.csv", []byte(csv))
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Acme", ds.Records[0].Company)
	assert.Equal(t, 2019, ds.Records[0].FiscalYear)
}

func TestLoader_SchemaError(t *testing.T) {
	csv := "회사명,거래소코드,회계년도,연간변동성\nA,1,2020,0.1\n"

	_, err := newLoader().Parse("partial.csv", []byte(csv))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{
		"이자보상배율(이자비용)",
		"영업활동으로 인한 현금흐름(*)(천원)",
		"CAGR",
		"target_class",
	}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "partial.csv")
}

func TestLoader_EmptyInputIsSchemaError(t *testing.T) {
	_, err := newLoader().Parse("empty.csv", nil)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Missing, len(RequiredColumns))
}

func TestLoader_NoRecentYearsWarns(t *testing.T) {
	csv := koreanHeader + "\nA,1,2010,1,1,0.1,1,0\nB,2,2012,1,1,0.2,1,0\n"

	ds, err := newLoader().Parse("old.csv", []byte(csv))
	require.NoError(t, err)
	assert.Empty(t, ds.Records)
	require.NotEmpty(t, ds.Warnings)
	assert.Equal(t, WarnNoRecentYears, ds.Warnings[0].Code)
}

func TestLoader_DegenerateQuartilesWarn(t *testing.T) {
	csv := koreanHeader + "\nA,1,2020,1,1,0.1,1,0\nB,2,2020,1,1,0.1,2,0\nC,3,2020,1,1,0.2,3,0\n"

	ds, err := newLoader().Parse("flat.csv", []byte(csv))
	require.NoError(t, err)
	for _, r := range ds.Records {
		assert.Equal(t, 1, r.VolQuartile)
	}
	require.NotEmpty(t, ds.Warnings)
	assert.Equal(t, WarnDegenerateQuartiles, ds.Warnings[0].Code)
}

func TestLoader_ParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := strings.Split(koreanHeader, ",")
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	rows := [][]interface{}{
		{"LG화학", "051910", 2020, 4.2, 5000, 0.31, 12.3, 1},
		{"LG화학", "051910", 2021, 3.9, 4800, 0.28, 10.1, 1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := newLoader().Parse("stock_dataset.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "LG화학", ds.Records[0].Company)
	assert.Equal(t, "051910", ds.Records[0].ExchangeCode)
	assert.InDelta(t, 12.3, ds.Records[0].CAGR, 1e-9)
	assert.Equal(t, 1, ds.Records[1].TargetClass)
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	_, err := newLoader().Parse("data.json", []byte("{}"))
	assert.ErrorContains(t, err, "unsupported dataset format")
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(koreanHeader+"\nA,1,2020,1,1,0.1,1,0\n"), 0644))

	ds, err := newLoader().Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)

	_, err = newLoader().Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		nan      bool
	}{
		{"1,234.5", 1234.5, false},
		{" -3 ", -3, false},
		{"", 0, true},
		{"-", 0, true},
		{"abc", 0, true},
		{"inf", 0, true},
	}
	for _, tt := range tests {
		got := parseNumber(tt.in)
		if tt.nan {
			assert.True(t, math.IsNaN(got), tt.in)
		} else {
			assert.Equal(t, tt.expected, got, tt.in)
		}
	}
}

func TestReadCSV_StripsBOM(t *testing.T) {
	rows, err := readCSV(append([]byte("\xef\xbb\xbf"), []byte("a,b\n1,2\n")...))
	require.NoError(t, err)
	assert.Equal(t, "a", rows[0][0])
	assert.True(t, bytes.Equal([]byte("2"), []byte(rows[1][1])))
}
