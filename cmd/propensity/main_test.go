package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/propensity/internal/modules/dataset/datasettest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--plain", "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stock_dataset.csv")
	require.NoError(t, os.WriteFile(path, datasettest.CSV(
		datasettest.Record("삼성전자", "005930", 2021, 8.5, 0.10, 0),
		datasettest.Record("LG화학", "051910", 2021, 12.3, 0.20, 1),
		datasettest.Record("카카오", "035720", 2021, 3.1, 0.30, 2),
		datasettest.Record("셀트리온", "068270", 2021, 20.4, 0.40, 3),
	), 0644))
	return path
}

func TestQuestionsCommand(t *testing.T) {
	out, err := execute(t, "questions")
	require.NoError(t, err)
	assert.Contains(t, out, "# 투자 성향 진단")
	assert.Contains(t, out, "`risk_tolerance`")
}

func TestScoreCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"age": 1,
		"investment_period": 4,
		"investment_experience": [4],
		"knowledge_level": 2,
		"asset_ratio": 0,
		"income_source": 0,
		"risk_tolerance": 3
	}`), 0644))

	out, err := execute(t, "score", "--answers", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# 진단 결과: 공격투자형")
	assert.Contains(t, out, "**Score:** 96.6")
}

func TestScoreCommand_Incomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"age": 1}`), 0644))

	_, err := execute(t, "score", "--answers", path)
	assert.Error(t, err)
}

func TestBacktestCommand(t *testing.T) {
	ds := writeDataset(t)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		contains    []string
		notContains []string
	}{
		{
			name:        "without kyc hides recommendations",
			args:        []string{"backtest", "--dataset", ds, "--category", "moderately_conservative", "--kyc=false"},
			contains:    []string{"# Backtest: 안정추구형", "--kyc"},
			notContains: []string{"## Recommendations"},
		},
		{
			name:     "with kyc lists recommendations",
			args:     []string{"backtest", "--dataset", ds, "--category", "안정추구형", "--kyc"},
			contains: []string{"## Recommendations (2021)", "| 삼성전자 | 005930 |"},
		},
		{
			name:    "conservative is barred",
			args:    []string{"backtest", "--dataset", ds, "--category", "conservative", "--kyc=false"},
			wantErr: true,
		},
		{
			name:    "unknown category",
			args:    []string{"backtest", "--dataset", ds, "--category", "reckless", "--kyc=false"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestScreenCommand(t *testing.T) {
	ds := writeDataset(t)

	out, err := execute(t, "screen", "--dataset", ds, "--class", "2,3", "--sort", "cagr", "--order", "asc", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "# Screener (2)")
	assert.Less(t, bytes.Index([]byte(out), []byte("카카오")), bytes.Index([]byte(out), []byte("셀트리온")))

	_, err = execute(t, "screen", "--dataset", ds, "--class", "x", "--sort", "cagr", "--order", "")
	assert.Error(t, err)
}
