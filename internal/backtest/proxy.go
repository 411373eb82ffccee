package backtest

import (
	"errors"
	"fmt"
	"math"

	"chooser-bench/internal/marketdata"
	"chooser-bench/internal/pricing"
)

var (
	// ErrInsufficientHistory indicates a valuation date without enough
	// forward price history to realize the proxy payoff. Such dates are
	// skipped from the backtest sample, never extrapolated.
	ErrInsufficientHistory = errors.New("backtest: insufficient forward history")
)

// Params is the static parameter bundle for one backtest: the contract
// terms in years for pricing and in trading-day offsets for realizing the
// proxy against the historical series.
type Params struct {
	Strike   float64
	T1Years  float64
	T2Years  float64
	T1Offset int
	T2Offset int
	// DividendYield overrides the per-date rolling proxy when non-negative.
	DividendYield float64
	Policy        pricing.ExercisePolicy
}

// Validate rejects parameter bundles the pricers could not accept.
func (p Params) Validate() error {
	if p.Strike <= 0 || math.IsNaN(p.Strike) {
		return fmt.Errorf("%w: strike must be positive, got %g", pricing.ErrInvalidInput, p.Strike)
	}
	if p.T1Years <= 0 || p.T2Years < p.T1Years {
		return fmt.Errorf("%w: need t2 >= t1 > 0 in years, got t1=%g t2=%g",
			pricing.ErrInvalidInput, p.T1Years, p.T2Years)
	}
	if p.T1Offset <= 0 || p.T2Offset < p.T1Offset {
		return fmt.Errorf("%w: need t2 >= t1 > 0 in trading days, got t1=%d t2=%d",
			pricing.ErrInvalidInput, p.T1Offset, p.T2Offset)
	}
	return nil
}

// RealizedProxy converts the historical path after valuation index i into a
// ground-truth discounted chooser payoff: locate the spot at i+T1Offset and
// i+T2Offset, apply the exercise rule, and discount the payoff back to i at
// the rate in force at i over T2Years.
//
// Reads are confined to row i (parameters) and rows strictly after i (the
// realized path); nothing before i is touched.
func RealizedProxy(series *marketdata.Series, i int, p Params) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if i < 0 || i >= series.Len() {
		return 0, fmt.Errorf("%w: index %d out of range", pricing.ErrInvalidInput, i)
	}
	if i+p.T2Offset >= series.Len() {
		return 0, fmt.Errorf("%w: date %s needs %d forward days, have %d",
			ErrInsufficientHistory,
			series.Row(i).Date.Format("2006-01-02"),
			p.T2Offset,
			series.Len()-1-i)
	}

	snap, err := series.Snapshot(i, p.Strike, p.T1Years, p.T2Years, p.DividendYield)
	if err != nil {
		return 0, err
	}

	st1 := series.Row(i + p.T1Offset).Close
	st2 := series.Row(i + p.T2Offset).Close
	if math.IsNaN(st1) || math.IsNaN(st2) {
		return 0, fmt.Errorf("%w: close on forward path from %s",
			marketdata.ErrMissingField, series.Row(i).Date.Format("2006-01-02"))
	}

	payoff, _ := pricing.ChooserPayoff(pricing.SimulatedPath{ST1: st1, ST2: st2}, snap, p.Policy)
	return math.Exp(-snap.Rate*p.T2Years) * payoff, nil
}
