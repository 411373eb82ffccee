package pricing

import (
	"fmt"
	"math"
)

// PricingResult is the output of one chooser valuation. StdErr and
// CallRatio are populated by the Monte Carlo method only.
type PricingResult struct {
	Price     float64
	StdErr    float64
	CallRatio float64
	Paths     int
	Policy    ExercisePolicy
}

// Pricer values one market snapshot.
type Pricer interface {
	Price(snap MarketSnapshot) (PricingResult, error)
}

// MonteCarloPricer estimates the chooser value by simulating joint
// (S_T1, S_T2) paths, applying the exercise policy, and discounting the
// payoffs to present value at e^(-r*T2).
type MonteCarloPricer struct {
	Paths  int
	Seed   uint64
	Policy ExercisePolicy
}

// Price runs the simulation. The estimate is the sample mean of discounted
// payoffs and the standard error is the population standard deviation over
// sqrt(N), accumulated as sum and sum-of-squares so the reduction order
// never affects the result.
func (p MonteCarloPricer) Price(snap MarketSnapshot) (PricingResult, error) {
	sim, err := NewPathSimulator(snap, p.Seed)
	if err != nil {
		return PricingResult{}, err
	}
	paths, err := sim.Simulate(p.Paths)
	if err != nil {
		return PricingResult{}, err
	}

	discount := math.Exp(-snap.Rate * snap.T2)
	var sum, sumSq float64
	calls := 0
	for _, path := range paths {
		payoff, isCall := ChooserPayoff(path, snap, p.Policy)
		pv := discount * payoff
		sum += pv
		sumSq += pv * pv
		if isCall {
			calls++
		}
	}

	n := float64(len(paths))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	return PricingResult{
		Price:     mean,
		StdErr:    math.Sqrt(variance) / math.Sqrt(n),
		CallRatio: float64(calls) / n,
		Paths:     len(paths),
		Policy:    p.Policy,
	}, nil
}

// AnalyticPricer wraps the Rubinstein closed form behind the Pricer
// interface so the backtest runner can swap valuation methods.
type AnalyticPricer struct{}

// Price evaluates the closed form. StdErr and CallRatio stay zero.
func (AnalyticPricer) Price(snap MarketSnapshot) (PricingResult, error) {
	price, err := RubinsteinPrice(snap)
	if err != nil {
		return PricingResult{}, err
	}
	return PricingResult{Price: price}, nil
}

// RubinsteinPrice returns the Rubinstein (1991) closed-form value of a
// simple chooser with continuous dividend yield:
//
//	V = S*e^(-q*T2)*N(d1) - K*e^(-r*T2)*N(d2)
//	  - S*e^(-q*T2)*N(-y1) + K*e^(-r*T2)*N(-y2)
//
// where d1/d2 are the usual T2 terms and y1/y2 use the T1 variance:
//
//	y1 = [ln(S/K) + (r-q)*T2 + sigma^2*T1/2] / (sigma*sqrt(T1))
//
// With sigma == 0 the diffusion terms vanish and the value degenerates to
// the better of the two deterministic discounted forward payoffs.
func RubinsteinPrice(snap MarketSnapshot) (float64, error) {
	if err := snap.Validate(); err != nil {
		return 0, err
	}

	s, k := snap.Spot, snap.Strike
	r, q, sigma := snap.Rate, snap.Dividend, snap.Sigma
	t1, t2 := snap.T1, snap.T2

	if sigma == 0 {
		call := BSMCall(s, k, r, q, 0, t2)
		put := BSMPut(s, k, r, q, 0, t2)
		return math.Max(call, put), nil
	}

	d1, d2 := dTerms(s, k, r, q, sigma, t2)

	sqrtT1 := sigma * math.Sqrt(t1)
	y1 := (math.Log(s/k) + (r-q)*t2 + 0.5*sigma*sigma*t1) / sqrtT1
	y2 := y1 - sqrtT1

	spotLeg := s * math.Exp(-q*t2)
	strikeLeg := k * math.Exp(-r*t2)

	price := spotLeg*stdNormal.CDF(d1) - strikeLeg*stdNormal.CDF(d2) -
		spotLeg*stdNormal.CDF(-y1) + strikeLeg*stdNormal.CDF(-y2)

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: closed form produced a non-finite price", ErrInvalidInput)
	}
	return price, nil
}
