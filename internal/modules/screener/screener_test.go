package screener

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/dataset/datasettest"
)

func panel() *dataset.Dataset {
	return datasettest.Dataset(
		datasettest.Record("삼성전자", "005930", 2020, 8.5, 0.25, 0),
		datasettest.Record("삼성SDI", "006400", 2020, 15.2, 0.40, 2),
		datasettest.Record("LG화학", "051910", 2020, 12.3, 0.30, 1),
		datasettest.Record("카카오", "035720", 2021, 3.1, 0.45, 3),
		datasettest.Record("삼성전자", "005930", 2021, 6.0, 0.22, 0),
		datasettest.Record("Naver", "035420", 2021, math.NaN(), 0.35, 1),
	)
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Company
	}
	return out
}

func TestScreen(t *testing.T) {
	ds := panel()

	tests := []struct {
		name     string
		query    Query
		expected []string
	}{
		{
			name:     "default sorts by CAGR descending, missing last",
			query:    Query{},
			expected: []string{"삼성SDI", "LG화학", "삼성전자", "삼성전자", "카카오", "Naver"},
		},
		{
			name:     "target class filter",
			query:    Query{TargetClasses: []int{0, 1}},
			expected: []string{"LG화학", "삼성전자", "삼성전자", "Naver"},
		},
		{
			name:     "year filter",
			query:    Query{Year: 2021},
			expected: []string{"삼성전자", "카카오", "Naver"},
		},
		{
			name:     "search is case-insensitive substring",
			query:    Query{Search: "naVER"},
			expected: []string{"Naver"},
		},
		{
			name:     "search hangul",
			query:    Query{Search: "삼성", SortBy: SortCompany},
			expected: []string{"삼성SDI", "삼성전자", "삼성전자"},
		},
		{
			name:     "volatility ascending by default",
			query:    Query{SortBy: SortVolatility, Year: 2020},
			expected: []string{"삼성전자", "LG화학", "삼성SDI"},
		},
		{
			name:     "volatility descending",
			query:    Query{SortBy: SortVolatility, Order: OrderDesc, Year: 2020},
			expected: []string{"삼성SDI", "LG화학", "삼성전자"},
		},
		{
			name:     "CAGR ascending keeps missing last",
			query:    Query{Order: OrderAsc, Year: 2021},
			expected: []string{"카카오", "삼성전자", "Naver"},
		},
		{
			name:     "limit",
			query:    Query{Limit: 2},
			expected: []string{"삼성SDI", "LG화학"},
		},
		{
			name:     "no match",
			query:    Query{TargetClasses: []int{3}, Year: 2020},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(Screen(ds, tt.query)))
		})
	}
}

func TestScreen_RowFields(t *testing.T) {
	rows := Screen(panel(), Query{Search: "LG"})
	require.Len(t, rows, 1)
	assert.Equal(t, "051910", rows[0].ExchangeCode)
	assert.Equal(t, 2020, rows[0].FiscalYear)
	assert.InDelta(t, 12.3-BenchmarkRate, rows[0].Excess, 1e-9)
}

func TestTopN(t *testing.T) {
	rows := []Row{{Company: "a"}, {Company: "b"}, {Company: "c"}}
	assert.Len(t, TopN(rows, 0), 3)
	assert.Len(t, TopN(rows, 2), 2)
	assert.Len(t, TopN(rows, 10), 3)
}

func TestParse(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortCAGR, k)

	k, err = ParseSortKey("Volatility")
	require.NoError(t, err)
	assert.Equal(t, SortVolatility, k)

	_, err = ParseSortKey("dividend")
	assert.Error(t, err)

	o, err := ParseOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, OrderDesc, o)

	_, err = ParseOrder("sideways")
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	p := Analyze(panel(), []string{"삼성전자", "LG화학", "없는회사"}, 0)

	assert.Equal(t, 3, p.Count)
	assert.InDelta(t, (8.5+12.3+6.0)/3, p.MeanCAGR, 1e-9)
	assert.InDelta(t, (0.25+0.30+0.22)/3, p.MeanVolatility, 1e-9)
	assert.InDelta(t, (8.5+12.3+6.0)/3-BenchmarkRate, p.MeanExcess, 1e-9)
	assert.Equal(t, BenchmarkRate, p.BenchmarkRate)
	assert.Equal(t, []string{"없는회사"}, p.Missing)
}

func TestAnalyze_YearAndMissingReturns(t *testing.T) {
	p := Analyze(panel(), []string{"Naver", "삼성전자"}, 2021)

	assert.Equal(t, 2, p.Count)
	assert.InDelta(t, 6.0, p.MeanCAGR, 1e-9, "missing returns are ignored")
	assert.Empty(t, p.Missing)

	empty := Analyze(panel(), nil, 0)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.MeanCAGR)
}
