package analysis

import (
	"math"
	"testing"

	"chooser-bench/internal/backtest"
)

// backtestSample mirrors the shape of the historical benchmark sample:
// 1308 valuation dates of which 137 sit above the VIX-30 threshold.
func backtestSample() []backtest.Record {
	records := make([]backtest.Record, 1308)
	for i := range records {
		vix := 18.0
		if i%9 == 0 && i/9 < 137 {
			vix = 35.0
		}
		records[i] = backtest.Record{
			Predicted: 30 + float64(i%7),
			Actual:    25 + float64(i%11),
			VolLevel:  vix,
			Sentiment: 0.5,
		}
	}
	return records
}

func TestVolPartitionCountsSumToTotal(t *testing.T) {
	records := backtestSample()
	parts := Partition(records, VolRegime(30))

	high := parts[RegimeHighVol]
	normal := parts[RegimeNormalVol]

	if high.Count != 137 {
		t.Fatalf("high_vol count = %d, want 137", high.Count)
	}
	if normal.Count != 1171 {
		t.Fatalf("normal_vol count = %d, want 1171", normal.Count)
	}
	if high.Count+normal.Count != len(records) {
		t.Fatalf("partition counts %d+%d do not sum to %d", high.Count, normal.Count, len(records))
	}
}

func TestSentimentPartition(t *testing.T) {
	records := []backtest.Record{
		{Predicted: 1, Actual: 1, Sentiment: 0.1},
		{Predicted: 1, Actual: 1, Sentiment: 0.9},
		{Predicted: 1, Actual: 1, Sentiment: math.NaN()},
	}

	parts := Partition(records, SentimentRegime(0.3))
	if parts[RegimeLowSentiment].Count != 1 {
		t.Fatalf("low_sentiment count = %d, want 1", parts[RegimeLowSentiment].Count)
	}
	// NaN sentiment lands in the normal bucket, never a third label.
	if parts[RegimeNormalSentiment].Count != 2 {
		t.Fatalf("normal_sentiment count = %d, want 2", parts[RegimeNormalSentiment].Count)
	}
}

func TestPartitionToleratesEmptyInput(t *testing.T) {
	parts := Partition(nil, VolRegime(30))
	if len(parts) != 0 {
		t.Fatalf("no records should yield no groups, got %v", parts)
	}

	// A label absent from the partition reads back as the zero summary.
	if s := parts[RegimeHighVol]; s.Count != 0 {
		t.Fatalf("absent label should have count 0, got %+v", s)
	}
}

func TestPartitionMetricsMatchGroupSummaries(t *testing.T) {
	records := backtestSample()
	parts := Partition(records, VolRegime(30))

	var manual []backtest.Record
	for _, rec := range records {
		if rec.VolLevel >= 30 {
			manual = append(manual, rec)
		}
	}
	want := Summarize(manual)
	got := parts[RegimeHighVol]
	if got != want {
		t.Fatalf("partition summary %+v != direct summary %+v", got, want)
	}
}
