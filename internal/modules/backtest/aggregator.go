// Package backtest ranks security-years by CAGR inside each group rule and
// produces the per-year results and the latest recommendations for a category.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/grouping"
	"github.com/aristath/propensity/internal/modules/profile"
	"github.com/aristath/propensity/pkg/formulas"
)

// DefaultTopN is the number of securities kept per year and rule
const DefaultTopN = 10

// requiredColumns must be present in the source for any cell to be computed
var requiredColumns = []dataset.Column{
	dataset.ColFiscalYear,
	dataset.ColTargetClass,
	dataset.ColCAGR,
	dataset.ColVolatility,
}

// Options controls Run
type Options struct {
	TopN int
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

// TopEntry is one ranked security inside a cell
type TopEntry struct {
	Company string  `json:"company" msgpack:"company"`
	CAGR    float64 `json:"cagr" msgpack:"cagr"`
}

// Cell is the result of one (year, rule) combination
type Cell struct {
	Year     int           `json:"year" msgpack:"year"`
	Rule     grouping.Rule `json:"rule" msgpack:"rule"`
	Label    string        `json:"label" msgpack:"label"`
	MeanCAGR float64       `json:"mean_cagr" msgpack:"mean_cagr"`
	Top      []TopEntry    `json:"top" msgpack:"top"`
}

// Key returns the "<year> - <label>" key the cell is addressed by
func (c Cell) Key() string {
	return fmt.Sprintf("%d - %s", c.Year, c.Label)
}

// Recommendation is a latest-year security offered to a category
type Recommendation struct {
	Company      string  `json:"company" msgpack:"company"`
	ExchangeCode string  `json:"exchange_code" msgpack:"exchange_code"`
	CAGR         float64 `json:"cagr" msgpack:"cagr"`
	Volatility   float64 `json:"volatility" msgpack:"volatility"`
	TargetClass  int     `json:"target_class" msgpack:"target_class"`
	RiskLevel    int     `json:"risk_level" msgpack:"risk_level"`
}

// Outcome is the full backtest for one dataset snapshot and category
type Outcome struct {
	Category        profile.Category  `json:"category" msgpack:"category"`
	Rule            grouping.Rule     `json:"rule" msgpack:"rule"`
	HasRule         bool              `json:"has_rule" msgpack:"has_rule"`
	Fingerprint     string            `json:"fingerprint" msgpack:"fingerprint"`
	Years           []int             `json:"years" msgpack:"years"`
	LatestYear      int               `json:"latest_year" msgpack:"latest_year"`
	Cells           []Cell            `json:"cells" msgpack:"cells"`
	Recommendations []Recommendation  `json:"recommendations" msgpack:"recommendations"`
	Warnings        []dataset.Warning `json:"warnings" msgpack:"warnings"`
}

// Cell returns the result for a year and rule
func (o *Outcome) Cell(year int, rule grouping.Rule) (Cell, bool) {
	for _, c := range o.Cells {
		if c.Year == year && c.Rule == rule {
			return c, true
		}
	}
	return Cell{}, false
}

// Series returns the cells of one rule in year order
func (o *Outcome) Series(rule grouping.Rule) []Cell {
	out := make([]Cell, 0, len(o.Years))
	for _, c := range o.Cells {
		if c.Rule == rule {
			out = append(out, c)
		}
	}
	return out
}

// Run computes every (year, rule) cell of ds and the latest-year recommendations
// for cat. It never fails: missing columns and empty groups degrade to zero
// cells and are reported as warnings.
func Run(ds *dataset.Dataset, cat profile.Category, opts Options) *Outcome {
	n := opts.topN()
	rule, hasRule := grouping.RuleFor(cat)

	out := &Outcome{
		Category:        cat,
		Rule:            rule,
		HasRule:         hasRule,
		Fingerprint:     ds.Fingerprint,
		Years:           ds.Years(),
		LatestYear:      ds.LatestYear(),
		Cells:           make([]Cell, 0, len(ds.Years())*len(grouping.Rules())),
		Recommendations: []Recommendation{},
		Warnings:        []dataset.Warning{},
	}

	if !hasRule {
		out.Warnings = append(out.Warnings, dataset.Warning{
			Code:    dataset.WarnNoRule,
			Message: fmt.Sprintf("%s has no group rule; no recommendations are produced", cat.Label()),
		})
	}

	if missing := ds.MissingColumns(requiredColumns...); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = c.Header()
		}
		out.Warnings = append(out.Warnings, dataset.Warning{
			Code:    dataset.WarnMissingColumns,
			Message: "backtest skipped, missing columns: " + strings.Join(names, ", "),
		})
		for _, year := range out.Years {
			for _, r := range grouping.Rules() {
				out.Cells = append(out.Cells, emptyCell(year, r))
			}
		}
		return out
	}

	byYear := make(map[int][]dataset.Record)
	for _, rec := range ds.Records {
		byYear[rec.FiscalYear] = append(byYear[rec.FiscalYear], rec)
	}

	for _, year := range out.Years {
		for _, r := range grouping.Rules() {
			top := rank(filter(byYear[year], r), n)
			if len(top) == 0 {
				out.Warnings = append(out.Warnings, dataset.Warning{
					Code:    dataset.WarnEmptyGroup,
					Message: fmt.Sprintf("no securities match %s in %d", r.Label(), year),
				})
			}
			out.Cells = append(out.Cells, buildCell(year, r, top))

			if hasRule && r == rule && year == out.LatestYear {
				out.Recommendations = recommendations(top)
			}
		}
	}

	return out
}

func emptyCell(year int, r grouping.Rule) Cell {
	return Cell{Year: year, Rule: r, Label: r.Label(), MeanCAGR: 0, Top: []TopEntry{}}
}

func filter(records []dataset.Record, r grouping.Rule) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, rec := range records {
		if r.Matches(rec.TargetClass, rec.VolQuartile) {
			out = append(out, rec)
		}
	}
	return out
}

// rank sorts by CAGR descending, missing last, keeping input order on ties,
// and returns the first n
func rank(records []dataset.Record, n int) []dataset.Record {
	sorted := append([]dataset.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].CAGR, sorted[j].CAGR
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func buildCell(year int, r grouping.Rule, top []dataset.Record) Cell {
	cell := emptyCell(year, r)

	returns := make([]float64, len(top))
	for i, rec := range top {
		returns[i] = rec.CAGR
		if rec.Company == "" || math.IsNaN(rec.CAGR) {
			continue
		}
		cell.Top = append(cell.Top, TopEntry{Company: rec.Company, CAGR: rec.CAGR})
	}
	cell.MeanCAGR = formulas.MeanFinite(returns)
	return cell
}

func recommendations(top []dataset.Record) []Recommendation {
	out := make([]Recommendation, 0, len(top))
	for _, rec := range top {
		if rec.Company == "" || math.IsNaN(rec.CAGR) {
			continue
		}
		out = append(out, Recommendation{
			Company:      rec.Company,
			ExchangeCode: rec.ExchangeCode,
			CAGR:         rec.CAGR,
			Volatility:   rec.Volatility,
			TargetClass:  rec.TargetClass,
			RiskLevel:    int(rec.RiskLevel),
		})
	}
	return out
}
