package analysis

import (
	"math"
	"testing"

	"chooser-bench/internal/backtest"
)

func TestSummarizeKnownValues(t *testing.T) {
	records := []backtest.Record{
		{Predicted: 12, Actual: 10},
		{Predicted: 9, Actual: 10},
		{Predicted: 10, Actual: 10},
	}

	s := Summarize(records)
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if math.Abs(s.MAE-1.0) > 1e-12 {
		t.Fatalf("MAE = %g, want 1", s.MAE)
	}
	wantRMSE := math.Sqrt((4.0 + 1.0 + 0.0) / 3.0)
	if math.Abs(s.RMSE-wantRMSE) > 1e-12 {
		t.Fatalf("RMSE = %g, want %g", s.RMSE, wantRMSE)
	}
	wantMAPE := (20.0 + 10.0 + 0.0) / 3.0
	if math.Abs(s.MAPE-wantMAPE) > 1e-12 {
		t.Fatalf("MAPE = %g, want %g", s.MAPE, wantMAPE)
	}
	if s.MAPEExcluded != 0 {
		t.Fatalf("nothing should be excluded, got %d", s.MAPEExcluded)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 {
		t.Fatalf("count = %d, want 0", s.Count)
	}
	if !math.IsNaN(s.MAE) || !math.IsNaN(s.RMSE) || !math.IsNaN(s.MAPE) {
		t.Fatalf("empty summary should carry NaN metrics, got %+v", s)
	}
}

func TestSummarizeMAPEExclusion(t *testing.T) {
	records := []backtest.Record{
		{Predicted: 5, Actual: 0}, // worthless proxy: excluded from MAPE
		{Predicted: 11, Actual: 10},
	}

	s := Summarize(records)
	if s.MAPEExcluded != 1 {
		t.Fatalf("excluded = %d, want 1", s.MAPEExcluded)
	}
	if math.Abs(s.MAPE-10.0) > 1e-12 {
		t.Fatalf("MAPE = %g, want 10 over the single stable record", s.MAPE)
	}
	// MAE and RMSE still cover everything.
	if math.Abs(s.MAE-3.0) > 1e-12 {
		t.Fatalf("MAE = %g, want 3", s.MAE)
	}
}
