package marketdata

import (
	"math"

	"github.com/montanaflynn/stats"
)

// TradingDays is the annualization factor for daily statistics.
const TradingDays = 252

// ComputeFeatures fills the derived columns in place: log returns, rolling
// annualized volatilities (21/63/252d), the rolling dividend-yield proxy,
// and the VIX-based sentiment proxy in [0, 1] where high VIX means low
// sentiment.
//
// Every window looks strictly backward from its row, so no derived value
// depends on later data.
func ComputeFeatures(s *Series) {
	n := len(s.rows)
	for i := 0; i < n; i++ {
		row := &s.rows[i]

		row.LogReturn = math.NaN()
		if i > 0 && s.rows[i-1].Close > 0 && row.Close > 0 {
			row.LogReturn = math.Log(row.Close / s.rows[i-1].Close)
		}

		row.Vol21 = rollingVol(s.rows, i, 21)
		row.Vol63 = rollingVol(s.rows, i, 63)
		row.Vol252 = rollingVol(s.rows, i, 252)
		row.DividendYield = dividendYieldProxy(s.rows, i)
		row.Sentiment = sentimentProxy(s.rows, i)
	}
}

// rollingVol annualizes the sample standard deviation of log returns over
// the trailing window. At least half a window of observations is required,
// matching the preprocessing pipeline's min-periods convention.
func rollingVol(rows []Row, i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}

	returns := make([]float64, 0, window)
	for j := start; j <= i; j++ {
		if !math.IsNaN(rows[j].LogReturn) {
			returns = append(returns, rows[j].LogReturn)
		}
	}
	if len(returns) < window/2 || len(returns) < 2 {
		return math.NaN()
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return math.NaN()
	}
	return sd * math.Sqrt(TradingDays)
}

// dividendYieldProxy is the trailing 252d dividend sum over the close, an
// annualized continuous-yield stand-in.
func dividendYieldProxy(rows []Row, i int) float64 {
	if rows[i].Close <= 0 || math.IsNaN(rows[i].Close) {
		return math.NaN()
	}

	start := i - TradingDays + 1
	if start < 0 {
		start = 0
	}
	var sum float64
	for j := start; j <= i; j++ {
		if !math.IsNaN(rows[j].Dividend) {
			sum += rows[j].Dividend
		}
	}
	return sum / rows[i].Close
}

// sentimentProxy is 1 minus the min-max normalized VIX over the trailing
// year, needing at least 21 observations. A flat window has no spread and
// yields NaN.
func sentimentProxy(rows []Row, i int) float64 {
	start := i - TradingDays + 1
	if start < 0 {
		start = 0
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	count := 0
	for j := start; j <= i; j++ {
		v := rows[j].VIX
		if math.IsNaN(v) {
			continue
		}
		count++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if count < 21 || hi == lo {
		return math.NaN()
	}
	return 1 - (rows[i].VIX-lo)/(hi-lo)
}
