package marketdata

import (
	"math"
	"testing"
)

func syntheticRows(t *testing.T, n int, close func(i int) float64, vix func(i int) float64) []Row {
	t.Helper()
	start := day(t, "2020-01-01")
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			Date:  start.AddDate(0, 0, i),
			Close: close(i),
			VIX:   vix(i),
			Rate:  0.02,
		}
	}
	return rows
}

func TestFeaturesFlatSeries(t *testing.T) {
	rows := syntheticRows(t, 300,
		func(i int) float64 { return 100 },
		func(i int) float64 { return 20 },
	)
	series, err := NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	ComputeFeatures(series)

	last := series.Row(series.Len() - 1)
	if last.Vol21 != 0 || last.Vol252 != 0 {
		t.Fatalf("flat prices should have zero volatility, got %g / %g", last.Vol21, last.Vol252)
	}
	if !math.IsNaN(last.Sentiment) {
		t.Fatalf("flat VIX has no min-max spread; sentiment should be NaN, got %g", last.Sentiment)
	}
	if !math.IsNaN(series.Row(0).LogReturn) {
		t.Fatal("first row has no prior close; log return should be NaN")
	}
}

func TestFeaturesSentimentBounds(t *testing.T) {
	// VIX ramping up: the latest day sits at the rolling maximum, so
	// sentiment bottoms out at 0.
	rows := syntheticRows(t, 300,
		func(i int) float64 { return 100 + float64(i)*0.1 },
		func(i int) float64 { return 15 + float64(i)*0.05 },
	)
	series, err := NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	ComputeFeatures(series)

	last := series.Row(series.Len() - 1)
	if last.Sentiment != 0 {
		t.Fatalf("rolling-max VIX should give sentiment 0, got %g", last.Sentiment)
	}

	for i := 25; i < series.Len(); i++ {
		s := series.Row(i).Sentiment
		if math.IsNaN(s) {
			continue
		}
		if s < 0 || s > 1 {
			t.Fatalf("sentiment out of [0,1] at row %d: %g", i, s)
		}
	}
}

func TestFeaturesDividendYieldProxy(t *testing.T) {
	rows := syntheticRows(t, 300,
		func(i int) float64 { return 100 },
		func(i int) float64 { return 20 },
	)
	// Quarterly dividend of 1.0: trailing-year sum is 4.0.
	for i := 60; i < len(rows); i += 63 {
		rows[i].Dividend = 1.0
	}
	series, err := NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	ComputeFeatures(series)

	last := series.Row(series.Len() - 1)
	if math.Abs(last.DividendYield-0.04) > 1e-12 {
		t.Fatalf("dividend yield proxy = %g, want 0.04", last.DividendYield)
	}
}

func TestFeaturesVolWindowWarmup(t *testing.T) {
	rows := syntheticRows(t, 40,
		func(i int) float64 { return 100 * math.Exp(0.01*float64(i%2)) },
		func(i int) float64 { return 20 },
	)
	series, err := NewSeries(rows)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}
	ComputeFeatures(series)

	// 40 rows cannot cover half of a 252d window.
	if !math.IsNaN(series.Row(39).Vol252) {
		t.Fatal("vol_252d should be NaN before half a window of history")
	}
	if v := series.Row(39).Vol21; math.IsNaN(v) || v <= 0 {
		t.Fatalf("vol_21d should be computable and positive, got %g", v)
	}
}
