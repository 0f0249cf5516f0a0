package simulator

import (
	"math/rand"

	"matchcore/internal/manager"
	"matchcore/internal/model"
)

// RateSampler answers, once per tick, whether a generator's event
// should fire (spec §4.H "each with a rate sampler (constant or
// engine-aware)"). p is the per-tick firing probability in [0, 1];
// the caller draws against it using the simulator's seeded RNG so
// that two simulators constructed with the same random_seed replay
// identically.
type RateSampler interface {
	Probability(mgr *manager.Manager) float64
}

// ConstantRate fires with a fixed per-tick probability, independent
// of book state.
type ConstantRate struct {
	P float64
}

func (c ConstantRate) Probability(*manager.Manager) float64 { return c.P }

// DepthProportionalRate returns Base + Scale*depth, clamped to [0, 1],
// where depth is the total resting size in the best PriceOffset levels
// on Side. The window is counted in price levels of Side's own book,
// not in ticks, and the opposite side's best price is not consulted.
// Zero depth (Side empty, or PriceOffset 0) returns Base unclamped.
type DepthProportionalRate struct {
	Base        float64
	Scale       float64
	Side        model.Side
	PriceOffset int
}

func (d DepthProportionalRate) Probability(mgr *manager.Manager) float64 {
	eng := mgr.Engine()

	var depth uint64
	bids, asks := eng.TopLevels(d.PriceOffset + 1)
	levels := bids
	if d.Side == model.Sell {
		levels = asks
	}
	n := d.PriceOffset
	if n > len(levels) {
		n = len(levels)
	}
	for i := 0; i < n; i++ {
		depth += levels[i].Size
	}
	if depth == 0 {
		return d.Base
	}
	p := d.Base + d.Scale*float64(depth)
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

// rng is the simulator's single deterministic source, seeded once
// from the configured random_seed (spec §4.H "All RNGs are seeded
// deterministically from the simulator config's random_seed").
type rng struct {
	src *rand.Rand
}

func newRNG(seed int64) *rng {
	return &rng{src: rand.New(rand.NewSource(seed))}
}

func (r *rng) draw() float64 { return r.src.Float64() }

func (r *rng) uint64n(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return uint64(r.src.Int63n(int64(n)))
}
