package model

import "github.com/shopspring/decimal"

// Meta carries identifying tags attached to an order by the manager:
// the symbol it trades, an exchange-assigned id, a hashed agent/session
// identifier, and an MPID-style market-participant tag.
type Meta struct {
	Symbol       string
	ExchangeID   uint64
	AgentIDHash  uint64
	MPID         string
}

// Order is the common representation for both limit and market
// orders. Market orders carry a zero Price and Type == Market; callers
// must not interpret a zero Price on a limit order as "unpriced".
type Order struct {
	ID        uint64
	Type      OrderType
	Side      Side
	Price     decimal.Decimal
	Quantity  uint64
	State     OrderState
	Timestamp uint64
	Meta      Meta
}

// Clone returns a value copy of the order. Order is passed by pointer
// through the book and index, so Clone exists for callers (reports,
// mirrors) that need a point-in-time snapshot immune to later
// in-place mutation.
func (o *Order) Clone() Order {
	return *o
}

// CheckInvariants validates the spec §3 order invariants:
// quantity > 0 iff state is ACTIVE or PARTIAL_FILLED, and
// FILLED implies quantity == 0.
func (o *Order) CheckInvariants() error {
	if o.State.IsLive() && o.Quantity == 0 {
		return ErrLiveOrderZeroQuantity
	}
	if o.State == Filled && o.Quantity != 0 {
		return ErrFilledOrderNonZeroQuantity
	}
	if !o.State.IsLive() && o.Quantity != 0 && o.State != Invalid {
		return ErrInactiveOrderNonZeroQuantity
	}
	return nil
}

// IsBuy is a convenience read used throughout book/engine comparator
// and report-construction code.
func (o *Order) IsBuy() bool {
	return o.Side == Buy
}
