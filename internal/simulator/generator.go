package simulator

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/event"
	"matchcore/internal/model"
)

// Generator produces at most one event per tick for a single event
// kind, gated by a RateSampler (spec §4.H "collection of independent
// event generators, typed by event kind"). Market generators leave
// Pricer unset. Only LIMIT_SUBMIT and MARKET_SUBMIT generators submit
// events; a generator of any other kind is logged and skipped.
type Generator struct {
	Kind   event.Kind
	Side   model.Side
	Rate   RateSampler
	Sizer  SizeSampler
	Pricer PriceSampler
}

// SizeSampler draws an order quantity for a newly generated event.
type SizeSampler interface {
	Size(r *rng) uint64
}

// UniformSize draws a uniform integer quantity in [Min, Max].
type UniformSize struct{ Min, Max uint64 }

func (u UniformSize) Size(r *rng) uint64 {
	if u.Max <= u.Min {
		return u.Min
	}
	return u.Min + r.uint64n(u.Max-u.Min+1)
}

// PriceSampler draws a limit price for a newly generated limit order,
// anchored around the book's current state.
type PriceSampler interface {
	Price(r *rng, anchor decimal.Decimal, tick decimal.Decimal) decimal.Decimal
}

// GridPrice places the price on one of NumGrids ticks on Side's side
// of anchor (spec §6.4 "anchor_price, num_grids" simulator config),
// so bids sit at or below anchor and asks sit at or above it.
type GridPrice struct {
	Side     model.Side
	NumGrids int
}

func (g GridPrice) Price(r *rng, anchor decimal.Decimal, tick decimal.Decimal) decimal.Decimal {
	grids := g.NumGrids
	if grids < 1 {
		grids = 1
	}
	offset := tick.Mul(decimal.NewFromInt(int64(r.uint64n(uint64(grids)) + 1)))
	if g.Side == model.Buy {
		return anchor.Sub(offset)
	}
	return anchor.Add(offset)
}
