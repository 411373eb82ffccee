package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal is the unit normal used for closed-form probability terms.
// distuv evaluates the CDF via erfc, which stays accurate out to |d| ~ 10.
var stdNormal = distuv.UnitNormal

// BSMCall returns the Black-Scholes-Merton price of a European call with
// continuous dividend yield q and time to expiry tau in years.
//
// Degenerate inputs are handled by explicit branches rather than letting
// the d1/d2 computation divide by zero: tau == 0 returns intrinsic value,
// sigma == 0 returns the discounted deterministic forward payoff.
func BSMCall(s, k, r, q, sigma, tau float64) float64 {
	if tau <= 0 {
		return math.Max(s-k, 0)
	}
	if sigma == 0 {
		return math.Max(s*math.Exp(-q*tau)-k*math.Exp(-r*tau), 0)
	}

	d1, d2 := dTerms(s, k, r, q, sigma, tau)
	return s*math.Exp(-q*tau)*stdNormal.CDF(d1) - k*math.Exp(-r*tau)*stdNormal.CDF(d2)
}

// BSMPut returns the matching European put price.
func BSMPut(s, k, r, q, sigma, tau float64) float64 {
	if tau <= 0 {
		return math.Max(k-s, 0)
	}
	if sigma == 0 {
		return math.Max(k*math.Exp(-r*tau)-s*math.Exp(-q*tau), 0)
	}

	d1, d2 := dTerms(s, k, r, q, sigma, tau)
	return k*math.Exp(-r*tau)*stdNormal.CDF(-d2) - s*math.Exp(-q*tau)*stdNormal.CDF(-d1)
}

func dTerms(s, k, r, q, sigma, tau float64) (d1, d2 float64) {
	sqrtTau := math.Sqrt(tau)
	d1 = (math.Log(s/k) + (r-q+0.5*sigma*sigma)*tau) / (sigma * sqrtTau)
	d2 = d1 - sigma*sqrtTau
	return d1, d2
}
