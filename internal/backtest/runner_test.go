package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chooser-bench/internal/marketdata"
	"chooser-bench/internal/pricing"
)

func TestRunnerBuildsChronologicalSample(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))*5
	}
	series := buildSeries(t, closes)

	runner, err := NewRunner(series, testParams(), pricing.AnalyticPricer{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The last T2Offset dates cannot realize a proxy.
	if result.Skipped != testParams().T2Offset {
		t.Fatalf("skipped = %d, want %d", result.Skipped, testParams().T2Offset)
	}
	if len(result.Records)+result.Skipped != series.Len() {
		t.Fatalf("records %d + skipped %d != series length %d",
			len(result.Records), result.Skipped, series.Len())
	}

	for i := 1; i < len(result.Records); i++ {
		if !result.Records[i-1].Date.Before(result.Records[i].Date) {
			t.Fatalf("records not chronological at %d", i)
		}
	}
	for _, rec := range result.Records {
		if rec.Predicted < 0 || rec.Actual < 0 {
			t.Fatalf("negative price in record %+v", rec)
		}
	}
}

func TestRunnerDateRange(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := buildSeries(t, closes)

	from := series.Row(5).Date
	to := series.Row(10).Date

	runner, err := NewRunner(series, testParams(), pricing.AnalyticPricer{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	result, err := runner.Run(from, to)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Records) != 6 {
		t.Fatalf("expected 6 records in range, got %d", len(result.Records))
	}
	if !result.Records[0].Date.Equal(from) || !result.Records[5].Date.Equal(to) {
		t.Fatalf("range bounds wrong: %v .. %v", result.Records[0].Date, result.Records[5].Date)
	}
}

func TestRunnerFailsOnMissingData(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	series := buildSeries(t, closes)

	// Rebuild with a NaN rate in the middle of the priced range.
	rows := make([]marketdata.Row, series.Len())
	for i := range rows {
		rows[i] = series.Row(i)
	}
	rows[3].Rate = math.NaN()
	broken, err := marketdata.NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	runner, err := NewRunner(broken, testParams(), pricing.AnalyticPricer{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := runner.Run(time.Time{}, time.Time{}); err == nil {
		t.Fatal("missing rate inside the range should fail the run")
	}
}

func TestRunnerWithMonteCarlo(t *testing.T) {
	closes := make([]float64, 12)
	for i := range closes {
		closes[i] = 150 + float64(i)
	}
	series := buildSeries(t, closes)

	mc := pricing.MonteCarloPricer{Paths: 2000, Seed: 42, Policy: pricing.PolicySpotVsStrike}
	runner, err := NewRunner(series, testParams(), mc, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	a, err := runner.Run(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, _ := runner.Run(time.Time{}, time.Time{})

	for i := range a.Records {
		if a.Records[i] != b.Records[i] {
			t.Fatalf("MC backtest not reproducible at record %d", i)
		}
	}
}
