package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationRecord is one persisted chooser valuation: the snapshot inputs
// that were priced and the outputs of both methods.
type ValuationRecord struct {
	Bucket        time.Time
	ValuationDate time.Time
	Spot          decimal.Decimal
	Strike        decimal.Decimal
	Sigma         decimal.Decimal
	Rate          decimal.Decimal
	MCPrice       decimal.Decimal
	MCStdErr      decimal.Decimal
	CallRatio     decimal.Decimal
	AnalyticPrice decimal.Decimal
	Policy        string
	Paths         int
	Status        string
	Error         *string
	CreatedAt     time.Time
}

// DivergenceAlert captures an emitted model-divergence alert for
// de-duplication/auditing.
type DivergenceAlert struct {
	ID            int64
	Bucket        time.Time
	DivergencePct decimal.Decimal
	ThresholdPct  decimal.Decimal
	Channels      []string
	CreatedAt     time.Time
}
