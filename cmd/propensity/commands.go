package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aristath/propensity/internal/modules/backtest"
	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/modules/profile"
	"github.com/aristath/propensity/internal/modules/questionnaire"
	"github.com/aristath/propensity/internal/modules/screener"
	"github.com/aristath/propensity/internal/report"
)

// --- Questions Command ---

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the questionnaire",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printMarkdown(cmd, report.Questions(questionnaire.All()))
	},
}

// --- Score Command ---

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an answer file and print the diagnosis",
	Long: `Score a JSON answer file of the form
{"age": 1, "investment_experience": [0, 3], ...}
where each value is an option index (a list for investment_experience).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("answers")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read answers: %w", err)
		}

		var answers questionnaire.AnswerSet
		if err := json.Unmarshal(data, &answers); err != nil {
			return fmt.Errorf("failed to parse answers: %w", err)
		}

		result, err := questionnaire.Score(answers)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, report.Diagnosis(result, profile.Diagnose(result.Total)))
	},
}

func init() {
	scoreCmd.Flags().String("answers", "", "JSON answer file")
	_ = scoreCmd.MarkFlagRequired("answers")
}

// --- Backtest Command ---

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a category's volatility group over a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("category")
		cat, err := profile.ParseCategory(code)
		if err != nil {
			return err
		}
		if err := profile.CheckEligible(cat); err != nil {
			return fmt.Errorf("%s: %s", cat.Label(), profile.AccessFor(cat).Notice)
		}

		ds, err := loadDataset(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		topN, _ := cmd.Flags().GetInt("top")
		holding, _ := cmd.Flags().GetInt("holding-years")

		store := dataset.NewStore()
		store.Swap(ds)
		svc := backtest.NewService(store, backtest.NewMemoryCache(), nil, backtest.ServiceOptions{
			TopN:         topN,
			HoldingYears: holding,
		}, log)

		outcome, err := svc.Backtest(cmd.Context(), cat)
		if err != nil {
			return err
		}
		summary := backtest.Summarize(outcome, svc.HoldingYears())

		// Recommendations are only shown once the KYC notice is acknowledged
		kyc, _ := cmd.Flags().GetBool("kyc")
		shown := *outcome
		var b strings.Builder
		if !kyc {
			shown.Recommendations = nil
		}
		b.WriteString(report.Backtest(&shown, summary))
		if notice := profile.AccessFor(cat).Notice; notice != "" {
			fmt.Fprintf(&b, "> %s\n\n", notice)
		}
		if !kyc {
			fmt.Fprintf(&b, "> %s\n\nRe-run with `--kyc` to acknowledge and list recommendations.\n", profile.KYCNotice)
		}
		return printMarkdown(cmd, b.String())
	},
}

func init() {
	addDatasetFlags(backtestCmd)
	backtestCmd.Flags().String("category", "", "category code or label (e.g. moderate, 위험중립형)")
	backtestCmd.Flags().Bool("kyc", false, "acknowledge the KYC notice and list recommendations")
	backtestCmd.Flags().Int("top", backtest.DefaultTopN, "securities per year and group")
	backtestCmd.Flags().Int("holding-years", backtest.DefaultHoldingYears, "years the CAGR figures span")
	_ = backtestCmd.MarkFlagRequired("category")
}

// --- Screen Command ---

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Filter and sort securities",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		query, err := screenQuery(cmd)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, report.Screen(screener.Screen(ds, query)))
	},
}

func init() {
	addDatasetFlags(screenCmd)
	screenCmd.Flags().String("class", "", "comma-separated target classes (e.g. 0,1)")
	screenCmd.Flags().Int("year", 0, "fiscal year")
	screenCmd.Flags().String("q", "", "company name search")
	screenCmd.Flags().String("sort", "cagr", "sort by company, cagr or volatility")
	screenCmd.Flags().String("order", "", "asc or desc (default depends on --sort)")
	screenCmd.Flags().Int("limit", 20, "maximum rows (0 for all)")
}

func screenQuery(cmd *cobra.Command) (screener.Query, error) {
	var q screener.Query

	classes, _ := cmd.Flags().GetString("class")
	for _, part := range strings.Split(classes, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := strconv.Atoi(part)
		if err != nil {
			return q, fmt.Errorf("invalid class %q", part)
		}
		q.TargetClasses = append(q.TargetClasses, c)
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	key, err := screener.ParseSortKey(sortBy)
	if err != nil {
		return q, err
	}
	order, _ := cmd.Flags().GetString("order")
	o, err := screener.ParseOrder(order)
	if err != nil {
		return q, err
	}

	q.SortBy = key
	q.Order = o
	q.Year, _ = cmd.Flags().GetInt("year")
	q.Search, _ = cmd.Flags().GetString("q")
	q.Limit, _ = cmd.Flags().GetInt("limit")
	return q, nil
}
