package app

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"chooser-bench/internal/analysis"
	"chooser-bench/internal/backtest"
)

// Backtest builds the realized-proxy sample over the requested window and
// prints aggregate and per-regime error metrics.
func (a *App) Backtest(ctx context.Context, opts BacktestOptions) error {
	result, err := a.runBacktest(opts.From, opts.To)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		fmt.Fprintln(os.Stdout, "no backtest records in the requested window")
		return nil
	}

	overall := analysis.Summarize(result.Records)
	volParts := analysis.Partition(result.Records, analysis.VolRegime(a.Config.Analysis.VolThreshold))
	sentParts := analysis.Partition(result.Records, analysis.SentimentRegime(a.Config.Analysis.SentimentThreshold))

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Records\t%d\n", len(result.Records))
	fmt.Fprintf(writer, "Skipped (insufficient history)\t%d\n", result.Skipped)
	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "Regime\tCount\tMAE\tRMSE\tMAPE%\tMAPE excl.")
	writeSummaryRow(writer, "overall", overall)
	for _, key := range sortedKeys(volParts) {
		writeSummaryRow(writer, key, volParts[key])
	}
	for _, key := range sortedKeys(sentParts) {
		writeSummaryRow(writer, key, sentParts[key])
	}
	return writer.Flush()
}

// runBacktest is shared with Export so both commands build the sample the
// same way.
func (a *App) runBacktest(from, to *time.Time) (backtest.Result, error) {
	series, err := a.loadSeries()
	if err != nil {
		return backtest.Result{}, err
	}

	runner, err := backtest.NewRunner(series, a.backtestParams(), a.newPricer(), a.Logger)
	if err != nil {
		return backtest.Result{}, err
	}

	var fromT, toT time.Time
	if from != nil {
		fromT = *from
	}
	if to != nil {
		toT = *to
	}
	return runner.Run(fromT, toT)
}

func writeSummaryRow(writer *tabwriter.Writer, label string, s analysis.MetricSummary) {
	fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%s\t%d\n",
		label, s.Count, formatMetric(s.MAE), formatMetric(s.RMSE), formatMetric(s.MAPE), s.MAPEExcluded)
}

func formatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func sortedKeys(parts map[string]analysis.MetricSummary) []string {
	keys := make([]string, 0, len(parts))
	for key := range parts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
