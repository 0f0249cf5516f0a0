package engine

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/event"
	"matchcore/internal/model"
	"matchcore/internal/report"
)

// submitLimit implements the spec §4.D limit-order submit path.
func (e *Engine) submitLimit(ev event.Event) ([]report.Report, error) {
	if err := ev.Validate(); err != nil {
		return nil, fatal(err)
	}
	if ev.Price.Sign() < 0 {
		return nil, fatal(ErrNegativePrice)
	}
	if _, exists := e.book.Lookup(ev.OrderID); exists {
		return nil, fatal(ErrDuplicateOrderID)
	}

	var reports []report.Report

	entryTs := e.clk.Tick(1)
	incoming := model.Order{
		ID:        ev.OrderID,
		Type:      model.Limit,
		Side:      ev.Side,
		Price:     ev.Price,
		Quantity:  ev.Quantity,
		State:     model.Active,
		Timestamp: entryTs,
	}
	reports = append(reports, report.NewLimitSubmit(e.nextReportID(), entryTs, incoming))

	// Step 2: drain resting opposite-side market orders that can
	// execute against this incoming limit at the limit's price.
	reports = append(reports, e.drainMarketQueue(&incoming)...)

	// Step 3: match against the top of the opposite book while prices cross.
	reports = append(reports, e.matchLimitAgainstBook(&incoming)...)

	// Step 4/5: place remainder, or no report if fully filled.
	if incoming.Quantity > 0 {
		if err := e.book.Insert(&incoming); err != nil {
			return reports, fatal(err)
		}
		placeTs := e.clk.Tick(1)
		reports = append(reports, report.NewLimitPlacement(e.nextReportID(), placeTs, incoming.ID, incoming.Side, incoming.Quantity, incoming.Price))
	} else {
		incoming.State = model.Filled
	}

	return reports, nil
}

// submitMarket implements the spec §4.D market-order submit path.
func (e *Engine) submitMarket(ev event.Event) ([]report.Report, error) {
	if err := ev.Validate(); err != nil {
		return nil, fatal(err)
	}
	if _, exists := e.book.Lookup(ev.OrderID); exists {
		return nil, fatal(ErrDuplicateOrderID)
	}

	var reports []report.Report

	entryTs := e.clk.Tick(1)
	incoming := model.Order{
		ID:        ev.OrderID,
		Type:      model.Market,
		Side:      ev.Side,
		Quantity:  ev.Quantity,
		State:     model.Active,
		Timestamp: entryTs,
	}
	reports = append(reports, report.NewMarketSubmit(e.nextReportID(), entryTs, incoming))

	reports = append(reports, e.matchMarketAgainstBook(&incoming)...)

	if incoming.Quantity > 0 {
		if incoming.Quantity < ev.Quantity {
			incoming.State = model.PartialFilled
		}
		e.book.EnqueueMarket(&incoming)
	} else {
		incoming.State = model.Filled
	}

	return reports, nil
}

// drainMarketQueue matches incoming (a just-submitted limit order)
// against resting opposite-side market orders at incoming's price,
// per spec §4.D step 2: the resting market order is the taker, the
// incoming limit order is the maker.
func (e *Engine) drainMarketQueue(incoming *model.Order) []report.Report {
	var reports []report.Report
	opposite := incoming.Side.Opposite()

	for incoming.Quantity > 0 {
		resting, ok := e.book.PeekMarketFront(opposite)
		if !ok {
			break
		}
		matchQty := minU64(resting.Quantity, incoming.Quantity)

		tradeTs := e.clk.Tick(1)
		tradeID := e.nextTradeID()

		updatedResting, err := e.book.ReduceMarketHead(opposite, matchQty)
		if err != nil {
			break
		}
		incoming.Quantity -= matchQty

		e.recordTrade(tradeID, tradeTs, resting, incoming, matchQty, incoming.Price)

		takerExec := report.ExecPartialFilled
		if updatedResting.Quantity == 0 {
			takerExec = report.ExecFilled
			updatedResting.State = model.Filled
			e.recordRemoved(*updatedResting)
		} else {
			updatedResting.State = model.PartialFilled
		}
		makerExec := report.ExecPartialFilled
		if incoming.Quantity == 0 {
			makerExec = report.ExecFilled
		}

		reports = append(reports,
			report.NewExecution(e.nextReportID(), tradeTs, resting.ID, resting.Side, model.Market, incoming.ID, tradeID, matchQty, incoming.Price, false, takerExec),
			report.NewExecution(e.nextReportID(), tradeTs, incoming.ID, incoming.Side, model.Limit, resting.ID, tradeID, matchQty, incoming.Price, true, makerExec),
		)
	}
	return reports
}

// matchLimitAgainstBook implements spec §4.D's "Match step" for an
// incoming limit order: it crosses the opposite book's top of book
// while remaining > 0 and the best opposite price is marketable
// against incoming's limit price.
func (e *Engine) matchLimitAgainstBook(incoming *model.Order) []report.Report {
	var reports []report.Report
	opposite := incoming.Side.Opposite()

	for incoming.Quantity > 0 {
		level, ok := e.book.BestLevel(opposite)
		if !ok {
			break
		}
		if incoming.Side == model.Buy && level.Price.GreaterThan(incoming.Price) {
			break
		}
		if incoming.Side == model.Sell && level.Price.LessThan(incoming.Price) {
			break
		}
		reports = append(reports, e.matchOneStep(incoming, opposite)...)
	}
	return reports
}

// matchMarketAgainstBook repeats the match step against the opposite
// book with no price constraint, while remaining > 0 and the opposite
// side is non-empty (spec §4.D market submit path).
func (e *Engine) matchMarketAgainstBook(incoming *model.Order) []report.Report {
	var reports []report.Report
	opposite := incoming.Side.Opposite()

	for incoming.Quantity > 0 {
		if _, ok := e.book.BestLevel(opposite); !ok {
			break
		}
		reports = append(reports, e.matchOneStep(incoming, opposite)...)
	}
	return reports
}

// matchOneStep consumes the head order of side's best level against
// incoming (spec §4.D "Match step"), emits the resulting trade's two
// EXECUTION reports, and advances the clock once for the trade. The
// trade price is always the resting maker's price (spec §3).
func (e *Engine) matchOneStep(incoming *model.Order, side model.Side) []report.Report {
	var reports []report.Report

	head, ok := e.book.PeekFront(side)
	if !ok {
		return reports
	}
	matchQty := minU64(head.Quantity, incoming.Quantity)
	headFullyFilled := matchQty == head.Quantity
	makerPrice := head.Price

	tradeTs := e.clk.Tick(1)
	tradeID := e.nextTradeID()

	var maker *model.Order
	var err error
	if headFullyFilled {
		maker, err = e.book.RemoveHeadFully(side)
	} else {
		maker, err = e.book.ReduceHead(side, matchQty)
	}
	if err != nil {
		return reports
	}
	incoming.Quantity -= matchQty

	e.recordTrade(tradeID, tradeTs, incoming, maker, matchQty, makerPrice)

	takerExec := report.ExecPartialFilled
	if incoming.Quantity == 0 {
		takerExec = report.ExecFilled
	}
	makerExec := report.ExecPartialFilled
	if headFullyFilled {
		makerExec = report.ExecFilled
		maker.Quantity = 0
		maker.State = model.Filled
		e.recordRemoved(*maker)
	} else {
		maker.State = model.PartialFilled
	}

	reports = append(reports,
		report.NewExecution(e.nextReportID(), tradeTs, incoming.ID, incoming.Side, incoming.Type, maker.ID, tradeID, matchQty, makerPrice, false, takerExec),
		report.NewExecution(e.nextReportID(), tradeTs, maker.ID, maker.Side, model.Limit, incoming.ID, tradeID, matchQty, makerPrice, true, makerExec),
	)
	return reports
}

// recordTrade builds and stores the Trade for a single match (spec
// §3). taker is the order consuming liquidity, maker the order that
// was resting (in the book or the market queue).
func (e *Engine) recordTrade(tradeID, ts uint64, taker, maker *model.Order, qty uint64, price decimal.Decimal) *model.Trade {
	trade := &model.Trade{
		ID:             tradeID,
		Timestamp:      ts,
		Quantity:       qty,
		Price:          price,
		IsBuyLimit:     (taker.Side == model.Buy && taker.Type == model.Limit) || (maker.Side == model.Buy && maker.Type == model.Limit),
		IsSellLimit:    (taker.Side == model.Sell && taker.Type == model.Limit) || (maker.Side == model.Sell && maker.Type == model.Limit),
		IsBuyInitiated: taker.Side == model.Buy,
	}
	if taker.Side == model.Buy {
		trade.BuyOrderID = taker.ID
		trade.SellOrderID = maker.ID
	} else {
		trade.BuyOrderID = maker.ID
		trade.SellOrderID = taker.ID
	}
	e.lastTrade = trade
	return trade
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
