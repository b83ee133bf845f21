// Package screener filters, searches and sorts individual security-years and
// summarizes a hand-picked portfolio against a fixed benchmark rate.
package screener

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/pkg/formulas"
)

// BenchmarkRate is the government-bond rate, in percent, excess returns are measured against
const BenchmarkRate = 2.8

// SortKey selects the column rows are ordered by
type SortKey string

const (
	SortCompany    SortKey = "company"
	SortCAGR       SortKey = "cagr"
	SortVolatility SortKey = "volatility"
)

// Order is the sort direction. OrderDefault is descending for CAGR and
// ascending for everything else.
type Order string

const (
	OrderDefault Order = ""
	OrderAsc     Order = "asc"
	OrderDesc    Order = "desc"
)

// ParseSortKey accepts the sort key names, empty meaning CAGR
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortCAGR, nil
	case SortCompany, SortCAGR, SortVolatility:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// ParseOrder accepts asc, desc or empty
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderDefault, OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Query selects and orders rows. Zero values mean no filter.
type Query struct {
	TargetClasses []int
	Year          int
	Search        string
	SortBy        SortKey
	Order         Order
	Limit         int
}

// Row is one security-year in screener output
type Row struct {
	Company      string  `json:"company"`
	ExchangeCode string  `json:"exchange_code"`
	FiscalYear   int     `json:"fiscal_year"`
	CAGR         float64 `json:"cagr"`
	Volatility   float64 `json:"volatility"`
	TargetClass  int     `json:"target_class"`
	RiskLevel    int     `json:"risk_level"`
	VolQuartile  int     `json:"vol_quartile"`
	Excess       float64 `json:"excess_return"`
}

func rowFrom(r dataset.Record) Row {
	return Row{
		Company:      r.Company,
		ExchangeCode: r.ExchangeCode,
		FiscalYear:   r.FiscalYear,
		CAGR:         r.CAGR,
		Volatility:   r.Volatility,
		TargetClass:  r.TargetClass,
		RiskLevel:    int(r.RiskLevel),
		VolQuartile:  r.VolQuartile,
		Excess:       r.CAGR - BenchmarkRate,
	}
}

// Screen returns the rows of ds matching q in q's order
func Screen(ds *dataset.Dataset, q Query) []Row {
	classes := make(map[int]bool, len(q.TargetClasses))
	for _, c := range q.TargetClasses {
		classes[c] = true
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))

	rows := make([]Row, 0)
	for _, r := range ds.Records {
		if len(classes) > 0 && !classes[r.TargetClass] {
			continue
		}
		if q.Year != 0 && r.FiscalYear != q.Year {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Company), search) {
			continue
		}
		rows = append(rows, rowFrom(r))
	}

	sortRows(rows, q.SortBy, q.Order)
	return TopN(rows, q.Limit)
}

// TopN returns the first n rows, or all of them when n is not positive
func TopN(rows []Row, n int) []Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

func sortRows(rows []Row, key SortKey, order Order) {
	if key == "" {
		key = SortCAGR
	}
	desc := order == OrderDesc || (order == OrderDefault && key == SortCAGR)

	sort.SliceStable(rows, func(i, j int) bool {
		if key == SortCompany {
			if desc {
				return rows[i].Company > rows[j].Company
			}
			return rows[i].Company < rows[j].Company
		}

		a, b := rows[i].CAGR, rows[j].CAGR
		if key == SortVolatility {
			a, b = rows[i].Volatility, rows[j].Volatility
		}
		// Missing values sort last in either direction.
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

// Portfolio summarizes a set of selected companies
type Portfolio struct {
	Count          int      `json:"count"`
	MeanCAGR       float64  `json:"mean_cagr"`
	MeanVolatility float64  `json:"mean_volatility"`
	MeanExcess     float64  `json:"mean_excess_return"`
	BenchmarkRate  float64  `json:"benchmark_rate"`
	Rows           []Row    `json:"rows"`
	Missing        []string `json:"missing"`
}

// Analyze summarizes every security-year of the named companies, limited to
// year when it is non-zero. Names not found are reported in Missing.
func Analyze(ds *dataset.Dataset, companies []string, year int) Portfolio {
	selected := make(map[string]bool, len(companies))
	for _, c := range companies {
		selected[strings.TrimSpace(c)] = true
	}

	p := Portfolio{BenchmarkRate: BenchmarkRate, Rows: []Row{}, Missing: []string{}}
	found := make(map[string]bool)
	for _, r := range ds.Records {
		if !selected[r.Company] || (year != 0 && r.FiscalYear != year) {
			continue
		}
		found[r.Company] = true
		p.Rows = append(p.Rows, rowFrom(r))
	}

	for _, c := range companies {
		name := strings.TrimSpace(c)
		if !found[name] && !slices.Contains(p.Missing, name) {
			p.Missing = append(p.Missing, name)
		}
	}

	cagrs := make([]float64, len(p.Rows))
	vols := make([]float64, len(p.Rows))
	excess := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		cagrs[i], vols[i], excess[i] = r.CAGR, r.Volatility, r.Excess
	}
	p.Count = len(p.Rows)
	p.MeanCAGR = formulas.MeanFinite(cagrs)
	p.MeanVolatility = formulas.MeanFinite(vols)
	p.MeanExcess = formulas.MeanFinite(excess)
	return p
}
