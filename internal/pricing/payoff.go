package pricing

import "math"

// ExercisePolicy selects how the holder decides call-vs-put at T1.
type ExercisePolicy int

const (
	// PolicySpotVsStrike is the simplified rule from Huang, Wang & Wan
	// (2021): choose the call iff S_T1 > K.
	PolicySpotVsStrike ExercisePolicy = iota
	// PolicyBSMValue is the proper rule: at T1, compare the BSM call and
	// put values for the remaining interval T2-T1 and take the richer one.
	PolicyBSMValue
)

// String returns the policy name used in logs and persisted records.
func (p ExercisePolicy) String() string {
	switch p {
	case PolicySpotVsStrike:
		return "spot_vs_strike"
	case PolicyBSMValue:
		return "bsm_value"
	default:
		return "unknown"
	}
}

// ParseExercisePolicy maps a configuration string onto a policy.
func ParseExercisePolicy(s string) (ExercisePolicy, bool) {
	switch s {
	case "spot_vs_strike", "simplified", "":
		return PolicySpotVsStrike, true
	case "bsm_value", "proper":
		return PolicyBSMValue, true
	}
	return PolicySpotVsStrike, false
}

// ChooserPayoff applies the exercise decision at T1 and evaluates the
// resulting payoff at T2 for one path, simulated or realized. It returns
// the payoff and whether the call was chosen.
//
// The two policies disagree near the strike: the proper rule's indifference
// point sits at K*exp(-(r-q)*(T2-T1)) rather than at K itself.
func ChooserPayoff(path SimulatedPath, snap MarketSnapshot, policy ExercisePolicy) (payoff float64, isCall bool) {
	tau := snap.T2 - snap.T1

	switch policy {
	case PolicyBSMValue:
		callVal := BSMCall(path.ST1, snap.Strike, snap.Rate, snap.Dividend, snap.Sigma, tau)
		putVal := BSMPut(path.ST1, snap.Strike, snap.Rate, snap.Dividend, snap.Sigma, tau)
		isCall = callVal > putVal
	default:
		isCall = path.ST1 > snap.Strike
	}

	if isCall {
		return math.Max(path.ST2-snap.Strike, 0), true
	}
	return math.Max(snap.Strike-path.ST2, 0), false
}
