package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"chooser-bench/internal/marketdata"
	"chooser-bench/internal/pricing"
)

// Record is one row of the backtest sample: a valuation date, the model's
// predicted chooser price, the realized-proxy price, and the regime inputs
// observed at the valuation date.
type Record struct {
	Date      time.Time
	Predicted float64
	Actual    float64
	VolLevel  float64
	Sentiment float64
}

// Result is the ordered backtest sample plus the count of trailing dates
// skipped for lack of forward history.
type Result struct {
	Records []Record
	Skipped int
}

// Runner walks a price series chronologically, pricing each valuation date
// with the configured method and pairing it against the realized proxy.
type Runner struct {
	series *marketdata.Series
	params Params
	pricer pricing.Pricer
	logger zerolog.Logger
}

// NewRunner validates the parameter bundle up front.
func NewRunner(series *marketdata.Series, params Params, pricer pricing.Pricer, logger zerolog.Logger) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", pricing.ErrInvalidInput)
	}
	return &Runner{
		series: series,
		params: params,
		pricer: pricer,
		logger: logger.With().Str("component", "backtest").Logger(),
	}, nil
}

// Run produces the backtest sample for valuation dates within [from, to].
// Zero bounds mean the whole series. Dates lacking forward history are
// skipped and counted; a missing required market field for a date inside
// the range fails the run, since silently substituting would corrupt the
// sample.
func (r *Runner) Run(from, to time.Time) (Result, error) {
	var result Result

	for i := 0; i < r.series.Len(); i++ {
		row := r.series.Row(i)
		if !from.IsZero() && row.Date.Before(from) {
			continue
		}
		if !to.IsZero() && row.Date.After(to) {
			break
		}

		actual, err := RealizedProxy(r.series, i, r.params)
		if errors.Is(err, ErrInsufficientHistory) {
			result.Skipped++
			continue
		}
		if err != nil {
			return Result{}, err
		}

		snap, err := r.series.Snapshot(i, r.params.Strike, r.params.T1Years, r.params.T2Years, r.params.DividendYield)
		if err != nil {
			return Result{}, err
		}
		predicted, err := r.pricer.Price(snap)
		if err != nil {
			return Result{}, fmt.Errorf("price %s: %w", row.Date.Format("2006-01-02"), err)
		}

		result.Records = append(result.Records, Record{
			Date:      row.Date,
			Predicted: predicted.Price,
			Actual:    actual,
			VolLevel:  row.VIX,
			Sentiment: row.Sentiment,
		})
	}

	r.logger.Info().
		Int("records", len(result.Records)).
		Int("skipped_insufficient_history", result.Skipped).
		Str("policy", r.params.Policy.String()).
		Msg("backtest sample built")

	return result, nil
}
