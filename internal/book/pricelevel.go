// Package book implements the two-sided, price-ordered limit order
// book: sorted price levels with FIFO queues, a parallel per-level
// size total, and an O(1) order index (spec §4.C).
package book

import (
	"container/list"

	"github.com/shopspring/decimal"

	"matchcore/internal/model"
)

// PriceLevel holds every live order resting at a single price, in
// FIFO arrival order, plus the aggregate remaining quantity at that
// price. Orders is a container/list.List of *model.Order so that a
// *list.Element handed out at insertion time remains valid (and O(1)
// to remove) no matter what happens to its neighbours.
type PriceLevel struct {
	Price    decimal.Decimal
	Orders   *list.List
	TotalQty uint64
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
	}
}

// Front returns the head order of the level's FIFO queue, or nil if
// the level is empty.
func (pl *PriceLevel) Front() *model.Order {
	e := pl.Orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*model.Order)
}

// empty reports whether the level carries no remaining size. Per spec
// §4.C, a level with TotalQty == 0 must be removed from the book.
func (pl *PriceLevel) empty() bool {
	return pl.TotalQty == 0
}
