package backtest

import (
	"github.com/aristath/propensity/internal/modules/grouping"
	"github.com/aristath/propensity/internal/modules/profile"
	"github.com/aristath/propensity/pkg/formulas"
)

// DefaultHoldingYears is the span the dataset CAGR figures cover. Dividing by
// it turns a cumulative figure into a per-year one.
const DefaultHoldingYears = 6

// YearPoint is one year of a rule's series
type YearPoint struct {
	Year       int     `json:"year"`
	MeanCAGR   float64 `json:"mean_cagr"`
	Annualised float64 `json:"annualised"`
}

// Summary condenses an outcome to the figures shown for a category
type Summary struct {
	Category        profile.Category `json:"category"`
	Rule            grouping.Rule    `json:"rule"`
	RuleLabel       string           `json:"rule_label"`
	Series          []YearPoint      `json:"series"`
	OverallMean     float64          `json:"overall_mean_cagr"`
	Annualised      float64          `json:"annualised_cagr"`
	HoldingYears    int              `json:"holding_years"`
	AvgVolatility   float64          `json:"average_volatility"`
	Recommendations int              `json:"recommendations"`
}

// Summarize returns the category rule's yearly series and its averages.
// A non-positive holdingYears uses DefaultHoldingYears.
func Summarize(o *Outcome, holdingYears int) Summary {
	if holdingYears <= 0 {
		holdingYears = DefaultHoldingYears
	}

	s := Summary{
		Category:        o.Category,
		Rule:            o.Rule,
		HoldingYears:    holdingYears,
		Series:          []YearPoint{},
		Recommendations: len(o.Recommendations),
	}
	if !o.HasRule {
		return s
	}
	s.RuleLabel = o.Rule.Label()

	means := make([]float64, 0, len(o.Years))
	for _, c := range o.Series(o.Rule) {
		means = append(means, c.MeanCAGR)
		s.Series = append(s.Series, YearPoint{
			Year:       c.Year,
			MeanCAGR:   c.MeanCAGR,
			Annualised: c.MeanCAGR / float64(holdingYears),
		})
	}
	s.OverallMean = formulas.MeanFinite(means)
	s.Annualised = s.OverallMean / float64(holdingYears)

	vols := make([]float64, len(o.Recommendations))
	for i, r := range o.Recommendations {
		vols[i] = r.Volatility
	}
	s.AvgVolatility = formulas.MeanFinite(vols)

	return s
}
