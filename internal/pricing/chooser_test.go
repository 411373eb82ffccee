package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestRubinsteinKnownValue(t *testing.T) {
	price, err := RubinsteinPrice(testSnap)
	if err != nil {
		t.Fatalf("RubinsteinPrice: %v", err)
	}
	if math.Abs(price-29.13) > 0.1 {
		t.Fatalf("analytic chooser = %g, want ~29.13", price)
	}
}

func TestChooserBracketedByVanillas(t *testing.T) {
	price, err := RubinsteinPrice(testSnap)
	if err != nil {
		t.Fatalf("RubinsteinPrice: %v", err)
	}

	call := BSMCall(testSnap.Spot, testSnap.Strike, testSnap.Rate, testSnap.Dividend, testSnap.Sigma, testSnap.T2)
	put := BSMPut(testSnap.Spot, testSnap.Strike, testSnap.Rate, testSnap.Dividend, testSnap.Sigma, testSnap.T2)

	if price <= math.Max(call, put) {
		t.Fatalf("chooser %g should exceed the richer vanilla %g", price, math.Max(call, put))
	}
	if price >= call+put {
		t.Fatalf("chooser %g should stay below the straddle %g", price, call+put)
	}
}

func TestMonteCarloConvergesToAnalytic(t *testing.T) {
	analytic, err := RubinsteinPrice(testSnap)
	if err != nil {
		t.Fatalf("RubinsteinPrice: %v", err)
	}

	mc := MonteCarloPricer{Paths: 100000, Seed: 42, Policy: PolicySpotVsStrike}
	result, err := mc.Price(testSnap)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	// The methods target slightly different exercise conventions, so this
	// is a cross-check with a tolerance, not an identity.
	if rel := math.Abs(result.Price-analytic) / analytic; rel > 0.02 {
		t.Fatalf("MC price %g deviates %.2f%% from analytic %g", result.Price, rel*100, analytic)
	}
}

func TestMonteCarloCallRatio(t *testing.T) {
	mc := MonteCarloPricer{Paths: 10000, Seed: 42, Policy: PolicySpotVsStrike}
	result, err := mc.Price(testSnap)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	// P(S_T1 > K) under these inputs is ~0.526.
	if math.Abs(result.CallRatio-0.524) > 0.02 {
		t.Fatalf("call ratio = %g, want ~0.524", result.CallRatio)
	}
	if result.Policy != PolicySpotVsStrike {
		t.Fatalf("result should report its policy, got %v", result.Policy)
	}
	if result.Price <= 0 || result.StdErr <= 0 {
		t.Fatalf("degenerate result: %+v", result)
	}
}

func TestMonteCarloErrorDecay(t *testing.T) {
	small := MonteCarloPricer{Paths: 10000, Seed: 11, Policy: PolicySpotVsStrike}
	large := MonteCarloPricer{Paths: 40000, Seed: 11, Policy: PolicySpotVsStrike}

	rSmall, err := small.Price(testSnap)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	rLarge, err := large.Price(testSnap)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}

	// Quadrupling N should roughly halve the standard error.
	ratio := rSmall.StdErr / rLarge.StdErr
	if ratio < 1.7 || ratio > 2.3 {
		t.Fatalf("stderr ratio = %g, want ~2 for 4x paths", ratio)
	}
}

func TestMonteCarloDeterministic(t *testing.T) {
	mc := MonteCarloPricer{Paths: 5000, Seed: 99, Policy: PolicyBSMValue}

	a, err := mc.Price(testSnap)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	b, _ := mc.Price(testSnap)
	if a != b {
		t.Fatalf("identical seed produced different results: %+v vs %+v", a, b)
	}
}

func TestPricersRejectInvalidInput(t *testing.T) {
	bad := testSnap
	bad.T2 = 0.1 // before T1

	mc := MonteCarloPricer{Paths: 100, Seed: 1}
	if _, err := mc.Price(bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("MC should reject t2 < t1, got %v", err)
	}
	if _, err := RubinsteinPrice(bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("analytic should reject t2 < t1, got %v", err)
	}

	bad = testSnap
	bad.Sigma = -0.1
	if _, err := RubinsteinPrice(bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("analytic should reject negative sigma, got %v", err)
	}

	bad = testSnap
	bad.Spot = math.NaN()
	if _, err := mc.Price(bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("MC should reject NaN spot, got %v", err)
	}
}

func TestRubinsteinZeroVol(t *testing.T) {
	snap := testSnap
	snap.Sigma = 0

	price, err := RubinsteinPrice(snap)
	if err != nil {
		t.Fatalf("RubinsteinPrice: %v", err)
	}

	call := BSMCall(snap.Spot, snap.Strike, snap.Rate, snap.Dividend, 0, snap.T2)
	put := BSMPut(snap.Spot, snap.Strike, snap.Rate, snap.Dividend, 0, snap.T2)
	if want := math.Max(call, put); price != want {
		t.Fatalf("sigma=0 chooser = %g, want deterministic %g", price, want)
	}
}
