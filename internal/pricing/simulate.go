package pricing

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SimulatedPath holds the two terminal prices of one risk-neutral GBM
// trajectory: the spot at the decision date T1 and at maturity T2.
type SimulatedPath struct {
	ST1 float64
	ST2 float64
}

// PathSimulator draws joint (S_T1, S_T2) pairs under risk-neutral GBM.
// The T2 leg is simulated conditionally on S_T1 along the same trajectory;
// drawing it independently from S0 would break the exercise logic that
// makes the chooser path dependent.
type PathSimulator struct {
	snap   MarketSnapshot
	normal distuv.Normal
}

// NewPathSimulator validates the snapshot and binds a seeded normal source.
// The same seed, snapshot, and path count reproduce identical paths.
func NewPathSimulator(snap MarketSnapshot, seed uint64) (*PathSimulator, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &PathSimulator{
		snap: snap,
		normal: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rand.NewSource(seed),
		},
	}, nil
}

// Simulate generates n joint paths. Each path consumes exactly two normal
// draws, one per period, so path i is independent of the total count only
// through the shared stream position.
func (p *PathSimulator) Simulate(n int) ([]SimulatedPath, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: path count must be positive, got %d", ErrInvalidInput, n)
	}

	snap := p.snap
	tau := snap.T2 - snap.T1

	drift1 := (snap.Rate - snap.Dividend - 0.5*snap.Sigma*snap.Sigma) * snap.T1
	drift2 := (snap.Rate - snap.Dividend - 0.5*snap.Sigma*snap.Sigma) * tau
	diff1 := snap.Sigma * math.Sqrt(snap.T1)
	diff2 := snap.Sigma * math.Sqrt(tau)

	paths := make([]SimulatedPath, n)
	for i := range paths {
		z1 := p.normal.Rand()
		z2 := p.normal.Rand()

		st1 := snap.Spot * math.Exp(drift1+diff1*z1)
		st2 := st1 * math.Exp(drift2+diff2*z2)
		paths[i] = SimulatedPath{ST1: st1, ST2: st2}
	}
	return paths, nil
}
