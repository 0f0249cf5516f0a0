package book

import (
	"container/list"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"matchcore/internal/model"
)

// levels is the generic price-sorted tree backing both sides of the
// book, grounded on the teacher's internal/engine/orderbook.go
// (PriceLevels = btree.BTreeG[*PriceLevel]).
type levels = btree.BTreeG[*PriceLevel]

// locator is the index's non-owning handle into a live order's queue
// position (spec §9 "Shared order handles"): the book's queue owns the
// order, the index only remembers where to find it.
type locator struct {
	side  model.Side
	level *PriceLevel
	elem  *list.Element
}

// LevelView is a read-only (price, size) pair used for top-of-book
// depth vectors (spec §3, §11).
type LevelView struct {
	Price decimal.Decimal
	Size  uint64
}

// OrderBook is the two-sided price-ordered book for a single symbol.
// Bids are sorted descending by price, asks ascending, matching
// NewOrderBook's comparators in the teacher.
type OrderBook struct {
	bids *levels
	asks *levels

	index map[uint64]*locator

	marketBuys  *list.List // unfilled market BUY orders, waiting on asks
	marketSells *list.List // unfilled market SELL orders, waiting on bids
}

// New returns an empty order book.
func New() *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})
	return &OrderBook{
		bids:        bids,
		asks:        asks,
		index:       make(map[uint64]*locator),
		marketBuys:  list.New(),
		marketSells: list.New(),
	}
}

func (b *OrderBook) sideTree(side model.Side) *levels {
	if side == model.Buy {
		return b.bids
	}
	return b.asks
}

// Insert places a live limit order at the tail of its price level,
// creating the level if needed, and records it in the index. Returns
// ErrDuplicateOrderID if the order's ID is already indexed.
func (b *OrderBook) Insert(o *model.Order) error {
	if _, exists := b.index[o.ID]; exists {
		return ErrDuplicateOrderID
	}
	tree := b.sideTree(o.Side)
	probe := &PriceLevel{Price: o.Price}
	level, ok := tree.Get(probe)
	if !ok {
		level = newPriceLevel(o.Price)
		tree.Set(level)
	}
	elem := level.Orders.PushBack(o)
	level.TotalQty += o.Quantity
	b.index[o.ID] = &locator{side: o.Side, level: level, elem: elem}
	return nil
}

// Lookup returns the live order for orderID, if any.
func (b *OrderBook) Lookup(orderID uint64) (*model.Order, bool) {
	loc, ok := b.index[orderID]
	if !ok {
		return nil, false
	}
	return loc.elem.Value.(*model.Order), true
}

// Remove fully removes orderID from its queue, level, and the index,
// dropping the level if it becomes empty. Returns the removed order.
func (b *OrderBook) Remove(orderID uint64) (*model.Order, error) {
	loc, ok := b.index[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	o := loc.elem.Value.(*model.Order)
	b.removeLocator(loc)
	return o, nil
}

func (b *OrderBook) removeLocator(loc *locator) {
	o := loc.elem.Value.(*model.Order)
	loc.level.Orders.Remove(loc.elem)
	loc.level.TotalQty -= minU64(o.Quantity, loc.level.TotalQty)
	delete(b.index, o.ID)
	if loc.level.empty() {
		b.sideTree(loc.side).Delete(loc.level)
	}
}

// Requeue moves orderID to the tail of newPrice's level, losing time
// priority — used by MODIFY_PRICE (spec §4.D). The growth case of
// MODIFY_QUANTITY re-inserts through Remove and Insert instead.
func (b *OrderBook) Requeue(orderID uint64, newPrice decimal.Decimal) error {
	loc, ok := b.index[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o := loc.elem.Value.(*model.Order)
	b.removeLocator(loc)
	o.Price = newPrice
	return b.Insert(o)
}

// AdjustQuantity changes orderID's remaining quantity in place,
// keeping its current queue position (time priority preserved). Used
// by the shrink case of MODIFY_QUANTITY and PARTIAL_CANCEL.
func (b *OrderBook) AdjustQuantity(orderID uint64, newQty uint64) error {
	loc, ok := b.index[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	o := loc.elem.Value.(*model.Order)
	if newQty > o.Quantity {
		loc.level.TotalQty += newQty - o.Quantity
	} else {
		loc.level.TotalQty -= o.Quantity - newQty
	}
	o.Quantity = newQty
	if loc.level.empty() {
		loc.level.Orders.Remove(loc.elem)
		delete(b.index, o.ID)
		b.sideTree(loc.side).Delete(loc.level)
	}
	return nil
}

// BestLevel returns the best (top-of-book) price level on side, if any.
func (b *OrderBook) BestLevel(side model.Side) (*PriceLevel, bool) {
	return b.sideTree(side).Min()
}

// PeekFront returns the head order of the best level on side.
func (b *OrderBook) PeekFront(side model.Side) (*model.Order, bool) {
	level, ok := b.BestLevel(side)
	if !ok {
		return nil, false
	}
	o := level.Front()
	if o == nil {
		return nil, false
	}
	return o, true
}

// ReduceHead reduces the head order of side's best level by qty
// (qty must be <= the head order's remaining quantity) and returns the
// updated order, keeping it resting if quantity remains.
func (b *OrderBook) ReduceHead(side model.Side, qty uint64) (*model.Order, error) {
	level, ok := b.BestLevel(side)
	if !ok {
		return nil, ErrEmptyLevel
	}
	elem := level.Orders.Front()
	if elem == nil {
		return nil, ErrEmptyQueue
	}
	o := elem.Value.(*model.Order)
	if qty > o.Quantity {
		return nil, ErrQuantityExceedsOrder
	}
	o.Quantity -= qty
	level.TotalQty -= qty
	return o, nil
}

// RemoveHeadFully removes the fully-filled head order of side's best
// level from the queue, index, and level total, deleting the level if
// it becomes empty.
func (b *OrderBook) RemoveHeadFully(side model.Side) (*model.Order, error) {
	level, ok := b.BestLevel(side)
	if !ok {
		return nil, ErrEmptyLevel
	}
	elem := level.Orders.Front()
	if elem == nil {
		return nil, ErrEmptyQueue
	}
	o := elem.Value.(*model.Order)
	loc, ok := b.index[o.ID]
	if !ok {
		return nil, ErrIndexMismatch
	}
	b.removeLocator(loc)
	return o, nil
}

// EnqueueMarket appends an unfilled market order to its side's market
// queue (spec §3 "Market queue").
func (b *OrderBook) EnqueueMarket(o *model.Order) {
	if o.Side == model.Buy {
		b.marketBuys.PushBack(o)
	} else {
		b.marketSells.PushBack(o)
	}
}

func (b *OrderBook) marketQueue(side model.Side) *list.List {
	if side == model.Buy {
		return b.marketBuys
	}
	return b.marketSells
}

// PeekMarketFront returns the head of side's resting market queue.
func (b *OrderBook) PeekMarketFront(side model.Side) (*model.Order, bool) {
	e := b.marketQueue(side).Front()
	if e == nil {
		return nil, false
	}
	return e.Value.(*model.Order), true
}

// ReduceMarketHead reduces the head resting market order of side by
// qty, removing it from the queue entirely once it is fully filled.
func (b *OrderBook) ReduceMarketHead(side model.Side, qty uint64) (*model.Order, error) {
	q := b.marketQueue(side)
	e := q.Front()
	if e == nil {
		return nil, ErrEmptyQueue
	}
	o := e.Value.(*model.Order)
	if qty > o.Quantity {
		return nil, ErrQuantityExceedsOrder
	}
	o.Quantity -= qty
	if o.Quantity == 0 {
		q.Remove(e)
	}
	return o, nil
}

// BestBidPrice and BestAskPrice return the top-of-book price on their
// side. ok is false when that side is empty (spec's "NaN" case,
// expressed idiomatically as a boolean rather than a sentinel float).
func (b *OrderBook) BestBidPrice() (decimal.Decimal, bool) {
	level, ok := b.bids.Min()
	if !ok {
		return decimal.Zero, false
	}
	return level.Price, true
}

func (b *OrderBook) BestAskPrice() (decimal.Decimal, bool) {
	level, ok := b.asks.Min()
	if !ok {
		return decimal.Zero, false
	}
	return level.Price, true
}

func (b *OrderBook) bestSize(side model.Side) (uint64, bool) {
	level, ok := b.BestLevel(side)
	if !ok {
		return 0, false
	}
	return level.TotalQty, true
}

// Mid returns (best_bid + best_ask) / 2.
func (b *OrderBook) Mid() (decimal.Decimal, bool) {
	bid, okB := b.BestBidPrice()
	ask, okA := b.BestAskPrice()
	if !okB || !okA {
		return decimal.Zero, false
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), true
}

// Spread returns best_ask - best_bid.
func (b *OrderBook) Spread() (decimal.Decimal, bool) {
	bid, okB := b.BestBidPrice()
	ask, okA := b.BestAskPrice()
	if !okB || !okA {
		return decimal.Zero, false
	}
	return ask.Sub(bid), true
}

// Micro returns the size-weighted microprice
// (bid_px*ask_sz + ask_px*bid_sz) / (bid_sz+ask_sz).
func (b *OrderBook) Micro() (decimal.Decimal, bool) {
	bidPx, okB := b.BestBidPrice()
	askPx, okA := b.BestAskPrice()
	if !okB || !okA {
		return decimal.Zero, false
	}
	bidSz, _ := b.bestSize(model.Buy)
	askSz, _ := b.bestSize(model.Sell)
	denom := bidSz + askSz
	if denom == 0 {
		return decimal.Zero, false
	}
	num := bidPx.Mul(decimal.NewFromInt(int64(askSz))).Add(askPx.Mul(decimal.NewFromInt(int64(bidSz))))
	return num.Div(decimal.NewFromInt(int64(denom))), true
}

// Imbalance returns (bid_sz - ask_sz) / (bid_sz + ask_sz).
func (b *OrderBook) Imbalance() (decimal.Decimal, bool) {
	bidSz, okB := b.bestSize(model.Buy)
	askSz, okA := b.bestSize(model.Sell)
	if !okB || !okA {
		return decimal.Zero, false
	}
	denom := bidSz + askSz
	if denom == 0 {
		return decimal.Zero, false
	}
	num := decimal.NewFromInt(int64(bidSz) - int64(askSz))
	return num.Div(decimal.NewFromInt(int64(denom))), true
}

// TopLevels returns up to n levels of depth on each side, best first.
func (b *OrderBook) TopLevels(n int) (bids, asks []LevelView) {
	bids = collectTopLevels(b.bids, n)
	asks = collectTopLevels(b.asks, n)
	return bids, asks
}

func collectTopLevels(tree *levels, n int) []LevelView {
	out := make([]LevelView, 0, n)
	tree.Scan(func(pl *PriceLevel) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, LevelView{Price: pl.Price, Size: pl.TotalQty})
		return true
	})
	return out
}

// BidLevelCount and AskLevelCount return the number of distinct price
// levels currently resting on each side (spec §11, the original's
// getBidBookSize/getAskBookSize).
func (b *OrderBook) BidLevelCount() int { return b.bids.Len() }
func (b *OrderBook) AskLevelCount() int { return b.asks.Len() }

// StateConsistencyCheck verifies the spec §8.1 invariants that are
// local to the book: size conservation, index faithfulness, and no
// orphan levels.
func (b *OrderBook) StateConsistencyCheck() error {
	if err := checkSide(b.bids); err != nil {
		return err
	}
	if err := checkSide(b.asks); err != nil {
		return err
	}
	for id, loc := range b.index {
		o, ok := loc.elem.Value.(*model.Order)
		if !ok || o.ID != id {
			return ErrIndexMismatch
		}
	}
	return nil
}

func checkSide(tree *levels) error {
	var outerErr error
	tree.Scan(func(pl *PriceLevel) bool {
		var sum uint64
		for e := pl.Orders.Front(); e != nil; e = e.Next() {
			sum += e.Value.(*model.Order).Quantity
		}
		if sum != pl.TotalQty {
			outerErr = ErrIndexMismatch
			return false
		}
		if pl.empty() {
			outerErr = ErrIndexMismatch
			return false
		}
		return true
	})
	return outerErr
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
