package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput indicates a snapshot or pricer parameter that fails validation.
	ErrInvalidInput = errors.New("pricing: invalid input")
)

// MarketSnapshot bundles the economic inputs for one chooser valuation.
// T1 is the decision horizon and T2 the maturity, both in years.
type MarketSnapshot struct {
	Spot     float64
	Strike   float64
	Rate     float64
	Sigma    float64
	Dividend float64
	T1       float64
	T2       float64
}

// Validate checks snapshot invariants: finite fields, positive spot and
// strike, non-negative volatility and dividend yield, T2 >= T1 > 0.
func (m MarketSnapshot) Validate() error {
	fields := map[string]float64{
		"spot":     m.Spot,
		"strike":   m.Strike,
		"rate":     m.Rate,
		"sigma":    m.Sigma,
		"dividend": m.Dividend,
		"t1":       m.T1,
		"t2":       m.T2,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, name)
		}
	}

	if m.Spot <= 0 {
		return fmt.Errorf("%w: spot must be positive, got %g", ErrInvalidInput, m.Spot)
	}
	if m.Strike <= 0 {
		return fmt.Errorf("%w: strike must be positive, got %g", ErrInvalidInput, m.Strike)
	}
	if m.Sigma < 0 {
		return fmt.Errorf("%w: sigma cannot be negative, got %g", ErrInvalidInput, m.Sigma)
	}
	if m.Dividend < 0 {
		return fmt.Errorf("%w: dividend yield cannot be negative, got %g", ErrInvalidInput, m.Dividend)
	}
	if m.T1 <= 0 {
		return fmt.Errorf("%w: t1 must be positive, got %g", ErrInvalidInput, m.T1)
	}
	if m.T2 < m.T1 {
		return fmt.Errorf("%w: t2 (%g) cannot precede t1 (%g)", ErrInvalidInput, m.T2, m.T1)
	}
	return nil
}
