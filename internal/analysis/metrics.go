package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"chooser-bench/internal/backtest"
)

// MAPEEpsilon bounds the denominator of the percentage error. Records with
// |actual| below it are excluded from MAPE and counted in MAPEExcluded;
// the metric is unstable near zero proxies, and that is not something to
// clamp away silently.
const MAPEEpsilon = 1e-6

// MetricSummary aggregates pointwise errors over a set of backtest
// records. An empty set has Count 0 and NaN metrics.
type MetricSummary struct {
	Count        int
	MAE          float64
	RMSE         float64
	MAPE         float64
	MAPEExcluded int
}

// Summarize computes MAE, RMSE, and MAPE over predicted-vs-proxy pairs.
// Summaries are recomputed fresh on each call; nothing is cached.
func Summarize(records []backtest.Record) MetricSummary {
	summary := MetricSummary{
		Count: len(records),
		MAE:   math.NaN(),
		RMSE:  math.NaN(),
		MAPE:  math.NaN(),
	}
	if len(records) == 0 {
		return summary
	}

	absErrs := make([]float64, len(records))
	sqErrs := make([]float64, len(records))
	pctErrs := make([]float64, 0, len(records))
	for i, rec := range records {
		diff := rec.Predicted - rec.Actual
		absErrs[i] = math.Abs(diff)
		sqErrs[i] = diff * diff
		if math.Abs(rec.Actual) < MAPEEpsilon {
			summary.MAPEExcluded++
			continue
		}
		pctErrs = append(pctErrs, math.Abs(diff)/math.Abs(rec.Actual)*100)
	}

	if mae, err := stats.Mean(absErrs); err == nil {
		summary.MAE = mae
	}
	if mse, err := stats.Mean(sqErrs); err == nil {
		summary.RMSE = math.Sqrt(mse)
	}
	if mape, err := stats.Mean(pctErrs); err == nil {
		summary.MAPE = mape
	}
	return summary
}
