package dataset

import (
	"strings"
)

// Column is a logical dataset column
type Column string

// Columns required by the loader
const (
	ColCompany           Column = "company"
	ColExchangeCode      Column = "exchange_code"
	ColFiscalYear        Column = "fiscal_year"
	ColInterestCoverage  Column = "interest_coverage"
	ColOperatingCashFlow Column = "operating_cash_flow"
	ColVolatility        Column = "volatility"
	ColCAGR              Column = "cagr"
	ColTargetClass       Column = "target_class"
)

// RequiredColumns are the columns every source must provide
var RequiredColumns = []Column{
	ColCompany,
	ColExchangeCode,
	ColFiscalYear,
	ColInterestCoverage,
	ColOperatingCashFlow,
	ColVolatility,
	ColCAGR,
	ColTargetClass,
}

// headers lists the accepted header spellings per column; the first is canonical.
var headers = map[Column][]string{
	ColCompany:           {"회사명", "종목명", "회사", "종목", "company", "name"},
	ColExchangeCode:      {"거래소코드", "exchange_code", "ticker", "code"},
	ColFiscalYear:        {"회계년도", "fiscal_year", "year"},
	ColInterestCoverage:  {"이자보상배율(이자비용)", "interest_coverage"},
	ColOperatingCashFlow: {"영업활동으로 인한 현금흐름(*)(천원)", "operating_cash_flow", "operating_cashflow"},
	ColVolatility:        {"연간변동성", "volatility", "annual_volatility"},
	ColCAGR:              {"CAGR", "cagr"},
	ColTargetClass:       {"target_class"},
}

// Header returns the canonical source header of a column
func (c Column) Header() string {
	if h, ok := headers[c]; ok {
		return h[0]
	}
	return string(c)
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// resolveHeader maps each required column to its index in the header row.
// A column matches the first alias present, in alias order.
func resolveHeader(header []string) (map[Column]int, []Column) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	index := make(map[Column]int, len(RequiredColumns))
	var missing []Column
	for _, col := range RequiredColumns {
		found := false
		for _, alias := range headers[col] {
			if i, ok := positions[normalizeHeader(alias)]; ok {
				index[col] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	return index, missing
}
