// Command propensity runs the questionnaire, backtest and screener from the
// terminal against a local or s3:// dataset.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/propensity/internal/modules/dataset"
	"github.com/aristath/propensity/internal/report"
	"github.com/aristath/propensity/pkg/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var log zerolog.Logger

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "propensity",
	Short: "Investment-propensity diagnosis and backtested recommendations",
	Long: `propensity scores the seven-question investment-propensity questionnaire,
classifies the result into one of five categories and backtests the matching
volatility group over a security dataset.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		log = logger.New(logger.Config{
			Level:  level,
			Pretty: true,
			Output: os.Stderr,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("plain", false, "print raw markdown instead of styled output")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(screenCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("propensity %s (%s)\n", version, commit)
	},
}

// printMarkdown renders md according to --plain and writes it to stdout
func printMarkdown(cmd *cobra.Command, md string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	out, err := report.Render(md, plain)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

// loadDataset reads and prepares the dataset named by --dataset
func loadDataset(ctx context.Context, cmd *cobra.Command) (*dataset.Dataset, error) {
	location, _ := cmd.Flags().GetString("dataset")
	if location == "" {
		return nil, fmt.Errorf("--dataset is required")
	}
	minYear, _ := cmd.Flags().GetInt("min-year")

	source, err := dataset.NewSource(ctx, location, dataset.S3Config{
		Region:          os.Getenv("S3_REGION"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		return nil, err
	}

	ds, err := dataset.NewLoader(minYear, log).Load(ctx, source)
	if err != nil {
		return nil, err
	}
	for _, w := range ds.Warnings {
		log.Warn().Str("code", w.Code).Msg(w.Message)
	}
	return ds, nil
}

func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().String("dataset", "", "dataset path or s3://bucket/key (.xlsx or .csv)")
	cmd.Flags().Int("min-year", dataset.DefaultMinFiscalYear, "drop fiscal years before this one")
}
