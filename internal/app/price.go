package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"chooser-bench/internal/pricing"
)

// Price values the chooser for a single trading day with both the Monte
// Carlo and the analytic method and prints the comparison.
func (a *App) Price(ctx context.Context, opts PriceOptions) error {
	series, err := a.loadSeries()
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("dataset %s is empty", a.Config.Data.DatasetPath)
	}

	idx := series.Len() - 1
	if opts.Date != "" {
		date, parseErr := time.Parse("2006-01-02", opts.Date)
		if parseErr != nil {
			return fmt.Errorf("parse --date: %w", parseErr)
		}
		i, ok := series.Index(date)
		if !ok {
			return fmt.Errorf("date %s is not a trading day in the dataset", opts.Date)
		}
		idx = i
	}

	opt := a.Config.Option
	snap, err := series.Snapshot(idx, opt.Strike, opt.T1Years, opt.T2Years, opt.DividendYield)
	if err != nil {
		return err
	}

	mc := pricing.MonteCarloPricer{
		Paths:  a.Config.Pricing.Paths,
		Seed:   a.Config.Pricing.Seed,
		Policy: a.Config.ExercisePolicy(),
	}
	mcResult, err := mc.Price(snap)
	if err != nil {
		return err
	}
	analytic, err := pricing.RubinsteinPrice(snap)
	if err != nil {
		return err
	}

	row := series.Row(idx)
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Valuation date\t%s\n", row.Date.Format("2006-01-02"))
	fmt.Fprintf(writer, "Spot\t%.4f\n", snap.Spot)
	fmt.Fprintf(writer, "Strike\t%.4f\n", snap.Strike)
	fmt.Fprintf(writer, "Sigma\t%.4f\n", snap.Sigma)
	fmt.Fprintf(writer, "Rate\t%.4f\n", snap.Rate)
	fmt.Fprintf(writer, "Dividend yield\t%.4f\n", snap.Dividend)
	fmt.Fprintf(writer, "Policy\t%s\n", mcResult.Policy)
	fmt.Fprintf(writer, "Monte Carlo price\t%.4f\n", mcResult.Price)
	fmt.Fprintf(writer, "Std error\t%.4f\n", mcResult.StdErr)
	fmt.Fprintf(writer, "Call ratio\t%.4f\n", mcResult.CallRatio)
	fmt.Fprintf(writer, "Analytic price\t%.4f\n", analytic)
	return writer.Flush()
}
