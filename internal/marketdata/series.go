package marketdata

import (
	"errors"
	"fmt"
	"math"
	"time"

	"chooser-bench/internal/pricing"
)

var (
	// ErrMissingField indicates a required market-data field is absent for
	// a date the caller asked to price. The core never substitutes a
	// default; fallback rates are a configuration-layer policy.
	ErrMissingField = errors.New("marketdata: required field missing")
	// ErrUnorderedSeries indicates rows that are not strictly chronological.
	ErrUnorderedSeries = errors.New("marketdata: series not strictly chronological")
)

// Row is one trading day of the pre-aligned feature table. Absent raw
// fields and not-yet-computable derived features are NaN.
type Row struct {
	Date     time.Time
	Close    float64
	High     float64
	Low      float64
	Volume   float64
	Dividend float64
	VIX      float64
	Rate     float64

	// Derived features, populated by ComputeFeatures.
	LogReturn     float64
	Vol21         float64
	Vol63         float64
	Vol252        float64
	DividendYield float64
	Sentiment     float64
}

// Series is an immutable chronological daily table. Lookups are by
// position or by date; forward offsets are always explicit indices, which
// keeps the no-look-ahead discipline auditable.
type Series struct {
	rows   []Row
	byDate map[string]int
}

const dateKeyLayout = "2006-01-02"

// NewSeries validates ordering and builds the date index.
func NewSeries(rows []Row) (*Series, error) {
	byDate := make(map[string]int, len(rows))
	for i, row := range rows {
		if i > 0 && !rows[i-1].Date.Before(row.Date) {
			return nil, fmt.Errorf("%w: %s followed by %s",
				ErrUnorderedSeries,
				rows[i-1].Date.Format(dateKeyLayout),
				row.Date.Format(dateKeyLayout))
		}
		byDate[row.Date.Format(dateKeyLayout)] = i
	}
	return &Series{rows: rows, byDate: byDate}, nil
}

// Len returns the number of trading days.
func (s *Series) Len() int { return len(s.rows) }

// Row returns the row at position i.
func (s *Series) Row(i int) Row { return s.rows[i] }

// Index returns the position of a trading date, if present.
func (s *Series) Index(date time.Time) (int, bool) {
	i, ok := s.byDate[date.Format(dateKeyLayout)]
	return i, ok
}

// FillMissingRates substitutes rate for every NaN risk-free rate and
// returns how many rows were touched. Defaulting is a configuration-layer
// policy, so this is only ever invoked at the application boundary, before
// the series reaches the pricing core.
func (s *Series) FillMissingRates(rate float64) int {
	filled := 0
	for i := range s.rows {
		if math.IsNaN(s.rows[i].Rate) {
			s.rows[i].Rate = rate
			filled++
		}
	}
	return filled
}

// Snapshot assembles the pricing inputs for the trading day at position i.
// Sigma comes from the volatility index level divided by 100 and the rate
// is taken as stored (decimal fraction). dividendYield overrides the
// rolling proxy when non-negative.
//
// A NaN in any required field fails with ErrMissingField rather than
// defaulting on the caller's behalf.
func (s *Series) Snapshot(i int, strike, t1Years, t2Years, dividendYield float64) (pricing.MarketSnapshot, error) {
	if i < 0 || i >= len(s.rows) {
		return pricing.MarketSnapshot{}, fmt.Errorf("%w: index %d out of range", ErrMissingField, i)
	}
	row := s.rows[i]

	required := map[string]float64{
		"close":        row.Close,
		"vix":          row.VIX,
		"treasury_10y": row.Rate,
	}
	q := dividendYield
	if q < 0 {
		required["dividend_yield"] = row.DividendYield
		q = row.DividendYield
	}
	for name, v := range required {
		if math.IsNaN(v) {
			return pricing.MarketSnapshot{}, fmt.Errorf("%w: %s at %s",
				ErrMissingField, name, row.Date.Format(dateKeyLayout))
		}
	}

	return pricing.MarketSnapshot{
		Spot:     row.Close,
		Strike:   strike,
		Rate:     row.Rate,
		Sigma:    row.VIX / 100,
		Dividend: q,
		T1:       t1Years,
		T2:       t2Years,
	}, nil
}
