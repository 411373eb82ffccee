package analysis

import (
	"math"

	"chooser-bench/internal/backtest"
)

// Regime labels for the built-in partitions.
const (
	RegimeHighVol         = "high_vol"
	RegimeNormalVol       = "normal_vol"
	RegimeLowSentiment    = "low_sentiment"
	RegimeNormalSentiment = "normal_sentiment"
)

// Labeler assigns a regime label to one backtest record.
type Labeler func(backtest.Record) string

// VolRegime labels records by the volatility-index level observed at the
// valuation date.
func VolRegime(threshold float64) Labeler {
	return func(rec backtest.Record) string {
		if rec.VolLevel >= threshold {
			return RegimeHighVol
		}
		return RegimeNormalVol
	}
}

// SentimentRegime labels records by the sentiment proxy at the valuation
// date; a NaN proxy (warm-up rows) counts as normal sentiment.
func SentimentRegime(threshold float64) Labeler {
	return func(rec backtest.Record) string {
		if !math.IsNaN(rec.Sentiment) && rec.Sentiment <= threshold {
			return RegimeLowSentiment
		}
		return RegimeNormalSentiment
	}
}

// Partition groups records by label and summarizes each group
// independently. Labels that never occur are simply absent; asking
// Summarize for an empty group yields Count 0 and NaN metrics, so empty
// partitions never raise.
func Partition(records []backtest.Record, label Labeler) map[string]MetricSummary {
	groups := make(map[string][]backtest.Record)
	for _, rec := range records {
		key := label(rec)
		groups[key] = append(groups[key], rec)
	}

	out := make(map[string]MetricSummary, len(groups))
	for key, group := range groups {
		out[key] = Summarize(group)
	}
	return out
}
