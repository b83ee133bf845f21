// Package report renders questionnaire, backtest and screener results as
// markdown, optionally styled for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aristath/propensity/internal/modules/backtest"
	"github.com/aristath/propensity/internal/modules/grouping"
	"github.com/aristath/propensity/internal/modules/profile"
	"github.com/aristath/propensity/internal/modules/questionnaire"
	"github.com/aristath/propensity/internal/modules/screener"
)

// Render styles md for the terminal. plain returns md untouched.
func Render(md string, plain bool) (string, error) {
	if plain {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Questions lists the questionnaire with option indices
func Questions(qs []questionnaire.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 투자 성향 진단\n\n")
	for _, q := range qs {
		fmt.Fprintf(&b, "## %s\n\n", q.Title)
		fmt.Fprintf(&b, "`%s`", q.ID)
		if q.MultiSelect {
			fmt.Fprintf(&b, " (multiple)")
		}
		fmt.Fprintf(&b, "\n\n")
		fmt.Fprintln(&b, "| # | Option | Points |")
		fmt.Fprintln(&b, "|---:|:---|---:|")
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "| %d | %s | %.1f |\n", i, opt, q.Points[i])
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintf(&b, "> %s\n", questionnaire.Disclaimer)
	return b.String()
}

// Diagnosis renders a scored questionnaire and its classification
func Diagnosis(result questionnaire.Result, d profile.Diagnosis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 진단 결과: %s\n\n", d.Label)
	fmt.Fprintf(&b, "**Score:** %.1f\n\n", result.Total)

	fmt.Fprintln(&b, "| Question | Points |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, id := range questionnaire.IDs() {
		fmt.Fprintf(&b, "| %s | %.1f |\n", id, result.Breakdown[id])
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "## 투자 성향 특징\n\n%s\n\n", d.Characteristics.Description)
	fmt.Fprintf(&b, "## 추천 상품\n\n%s\n\n", d.Characteristics.Products)

	if d.Gate.Notice != "" {
		fmt.Fprintf(&b, "> **%s:** %s\n\n", d.Gate.Access, d.Gate.Notice)
	}
	fmt.Fprintf(&b, "> %s\n", questionnaire.Disclaimer)
	return b.String()
}

// Backtest renders an outcome: summary, benchmark comparison, year x rule
// table and the latest-year recommendations.
func Backtest(o *backtest.Outcome, s backtest.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Backtest: %s\n\n", o.Category.Label())

	if !o.HasRule {
		fmt.Fprintf(&b, "No group rule applies to %s.\n\n", o.Category.Label())
	} else {
		fmt.Fprintf(&b, "**Group:** %s  \n", s.RuleLabel)
		fmt.Fprintf(&b, "**Overall mean CAGR:** %.2f%%  \n", s.OverallMean)
		fmt.Fprintf(&b, "**Annualised (÷%d):** %.2f%%  \n", s.HoldingYears, s.Annualised)
		fmt.Fprintf(&b, "**Average volatility:** %.4f\n\n", s.AvgVolatility)

		fmt.Fprintf(&b, "## Benchmarks\n\n")
		fmt.Fprintln(&b, "| Benchmark | Average | Delta (pp) |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for _, c := range backtest.Compare(s.Annualised) {
			fmt.Fprintf(&b, "| %s | %.2f%% | %+.2f |\n", c.Name, c.Average, c.Delta)
		}
		fmt.Fprintln(&b)
	}

	if len(o.Years) > 0 {
		b.WriteString(yearTable(o))
	}

	if len(o.Recommendations) > 0 {
		fmt.Fprintf(&b, "## Recommendations (%d)\n\n", o.LatestYear)
		fmt.Fprintln(&b, "| Company | Code | CAGR | Volatility | Class | Risk |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|")
		for _, r := range o.Recommendations {
			fmt.Fprintf(&b, "| %s | %s | %.2f%% | %.4f | %d | %d |\n",
				r.Company, r.ExchangeCode, r.CAGR, r.Volatility, r.TargetClass, r.RiskLevel)
		}
		fmt.Fprintln(&b)
	}

	if len(o.Warnings) > 0 {
		fmt.Fprintf(&b, "## Warnings\n\n")
		for _, w := range o.Warnings {
			fmt.Fprintf(&b, "- `%s` %s\n", w.Code, w.Message)
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}

// yearTable renders mean CAGR per year (rows) and rule (columns)
func yearTable(o *backtest.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Mean CAGR by year\n\n")

	rules := grouping.Rules()
	b.WriteString("| Year |")
	for _, r := range rules {
		fmt.Fprintf(&b, " %s |", r.Label())
	}
	b.WriteString("\n|---:|")
	b.WriteString(strings.Repeat("---:|", len(rules)))
	b.WriteString("\n")

	for _, year := range o.Years {
		fmt.Fprintf(&b, "| %d |", year)
		for _, r := range rules {
			c, _ := o.Cell(year, r)
			mark := ""
			if o.HasRule && r == o.Rule {
				mark = "**"
			}
			fmt.Fprintf(&b, " %s%.2f%s |", mark, c.MeanCAGR, mark)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Screen renders screener rows
func Screen(rows []screener.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Screener (%d)\n\n", len(rows))
	if len(rows) == 0 {
		fmt.Fprintln(&b, "No securities match.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Company | Code | Year | CAGR | Volatility | Class | Quartile | Excess |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|---:|")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f%% | %.4f | %d | Q%d | %+.2f |\n",
			r.Company, r.ExchangeCode, r.FiscalYear, r.CAGR, r.Volatility, r.TargetClass, r.VolQuartile, r.Excess)
	}
	return b.String()
}
