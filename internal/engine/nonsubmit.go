package engine

import (
	"matchcore/internal/event"
	"matchcore/internal/model"
	"matchcore/internal/report"
)

// processCancel implements spec §4.D CANCEL: remove from queue/index/
// level, emit CANCEL with the original quantity and price, log to
// removed-orders history. An unknown order_id is a recoverable lookup
// failure (spec §7): no mutation, a FAILURE report, no panic.
func (e *Engine) processCancel(ev event.Event) ([]report.Report, error) {
	ts := e.clk.Tick(1)
	o, found := e.book.Lookup(ev.OrderID)
	if !found {
		e.log.Warn().Uint64("order_id", ev.OrderID).Msg("cancel: order not found")
		return []report.Report{report.NewCancel(e.nextReportID(), ts, ev.OrderID, model.Buy, model.Limit, 0, model.Order{}.Price, false)}, nil
	}
	qty, price, side := o.Quantity, o.Price, o.Side
	removed, err := e.book.Remove(ev.OrderID)
	if err != nil {
		return nil, fatal(err)
	}
	removed.State = model.Cancelled
	removed.Quantity = 0
	e.recordRemoved(*removed)

	return []report.Report{report.NewCancel(e.nextReportID(), ts, ev.OrderID, side, model.Limit, qty, price, true)}, nil
}

// processPartialCancel implements spec §4.D PARTIAL_CANCEL(Δ). If
// Δ >= remaining, behaves as a full cancel but is still reported as
// PARTIAL_CANCEL (SPEC_FULL.md §12, open question 2).
func (e *Engine) processPartialCancel(ev event.Event) ([]report.Report, error) {
	if err := ev.Validate(); err != nil {
		return nil, fatal(err)
	}
	ts := e.clk.Tick(1)
	o, found := e.book.Lookup(ev.OrderID)
	if !found {
		e.log.Warn().Uint64("order_id", ev.OrderID).Msg("partial cancel: order not found")
		return []report.Report{failedPartialCancel(e.nextReportID(), ts, ev.OrderID)}, nil
	}

	side, orderType, price := o.Side, o.Type, o.Price
	qtyBefore := o.Quantity
	delta := ev.CancelQty
	if delta >= qtyBefore {
		delta = qtyBefore
		removed, err := e.book.Remove(ev.OrderID)
		if err != nil {
			return nil, fatal(err)
		}
		removed.State = model.Cancelled
		removed.Quantity = 0
		e.recordRemoved(*removed)
	} else {
		if err := e.book.AdjustQuantity(ev.OrderID, qtyBefore-delta); err != nil {
			return nil, fatal(err)
		}
	}

	return []report.Report{report.NewPartialCancel(e.nextReportID(), ts, ev.OrderID, side, orderType, delta, qtyBefore, price)}, nil
}

func failedPartialCancel(reportID, ts, orderID uint64) report.Report {
	r := report.NewPartialCancel(reportID, ts, orderID, model.Buy, model.Limit, 0, 0, model.Order{}.Price)
	r.Status = report.Failure
	return r
}

// processModifyPrice implements spec §4.D MODIFY_PRICE(new_p): remove
// from the old level, insert at the tail of the new level (loses time
// priority), emit MODIFY_PRICE with (old_qty, new_price).
func (e *Engine) processModifyPrice(ev event.Event) ([]report.Report, error) {
	if err := ev.Validate(); err != nil {
		return nil, fatal(err)
	}
	ts := e.clk.Tick(1)
	o, found := e.book.Lookup(ev.OrderID)
	if !found {
		e.log.Warn().Uint64("order_id", ev.OrderID).Msg("modify price: order not found")
		r := report.NewModifyPrice(e.nextReportID(), ts, ev.OrderID, model.Buy, 0, ev.NewPrice)
		r.Status = report.Failure
		return []report.Report{r}, nil
	}
	side := o.Side
	qty := o.Quantity
	if err := e.book.Requeue(ev.OrderID, ev.NewPrice); err != nil {
		return nil, fatal(err)
	}
	return []report.Report{report.NewModifyPrice(e.nextReportID(), ts, ev.OrderID, side, qty, ev.NewPrice)}, nil
}

// processModifyQuantity implements spec §4.D MODIFY_QUANTITY(new_q)
// with the open-question resolution in SPEC_FULL.md §12: new_q == 0
// behaves as CANCEL; new_q < q keeps time priority and is reported as
// PARTIAL_CANCEL; new_q > q moves to the tail of the same level
// (loses time priority) and is reported as MODIFY_QUANTITY.
func (e *Engine) processModifyQuantity(ev event.Event) ([]report.Report, error) {
	ts := e.clk.Tick(1)
	o, found := e.book.Lookup(ev.OrderID)
	if !found {
		e.log.Warn().Uint64("order_id", ev.OrderID).Msg("modify quantity: order not found")
		r := report.NewPartialCancel(e.nextReportID(), ts, ev.OrderID, model.Buy, model.Limit, 0, 0, model.Order{}.Price)
		r.Status = report.Failure
		return []report.Report{r}, nil
	}

	side, orderType, price := o.Side, o.Type, o.Price
	qtyBefore := o.Quantity

	switch {
	case ev.NewQty == 0:
		removed, err := e.book.Remove(ev.OrderID)
		if err != nil {
			return nil, fatal(err)
		}
		removed.State = model.Cancelled
		removed.Quantity = 0
		e.recordRemoved(*removed)
		return []report.Report{report.NewPartialCancel(e.nextReportID(), ts, ev.OrderID, side, orderType, qtyBefore, qtyBefore, price)}, nil

	case ev.NewQty < qtyBefore:
		if err := e.book.AdjustQuantity(ev.OrderID, ev.NewQty); err != nil {
			return nil, fatal(err)
		}
		delta := qtyBefore - ev.NewQty
		return []report.Report{report.NewPartialCancel(e.nextReportID(), ts, ev.OrderID, side, orderType, delta, qtyBefore, price)}, nil

	default: // ev.NewQty >= qtyBefore: requeued at the tail, loses time priority.
		if _, err := e.book.Remove(ev.OrderID); err != nil {
			return nil, fatal(err)
		}
		grown := model.Order{
			ID:        ev.OrderID,
			Type:      orderType,
			Side:      side,
			Price:     price,
			Quantity:  ev.NewQty,
			State:     model.Active,
			Timestamp: ts,
		}
		if err := e.book.Insert(&grown); err != nil {
			return nil, fatal(err)
		}
		return []report.Report{report.NewModifyQuantity(e.nextReportID(), ts, ev.OrderID, side, price, ev.NewQty, qtyBefore, price, orderType)}, nil
	}
}

// processCancelReplace implements spec §4.D CANCEL_REPLACE: a pure
// reposition (cancel old, place new) with no live match-loop
// invocation (SPEC_FULL.md §12, open question 3). Time priority is
// NOT preserved.
func (e *Engine) processCancelReplace(ev event.Event) ([]report.Report, error) {
	ts := e.clk.Tick(1)
	o, found := e.book.Lookup(ev.OrderID)
	if !found {
		e.log.Warn().Uint64("order_id", ev.OrderID).Msg("cancel replace: order not found")
		r := report.NewCancelReplace(e.nextReportID(), ts, ev.OrderID, ev.NewOrderID, model.Buy, 0, ev.Price, 0, ev.Price, model.Limit)
		r.Status = report.Failure
		return []report.Report{r}, nil
	}

	side, orderType := o.Side, o.Type
	priorQty, priorPrice := o.Quantity, o.Price

	newQty := priorQty
	if ev.ReplaceQty != nil {
		newQty = *ev.ReplaceQty
	}
	newPrice := priorPrice
	if ev.ReplacePrice != nil {
		newPrice = *ev.ReplacePrice
	}

	removed, err := e.book.Remove(ev.OrderID)
	if err != nil {
		return nil, fatal(err)
	}
	removed.State = model.Cancelled
	removed.Quantity = 0
	e.recordRemoved(*removed)

	replacement := model.Order{
		ID:        ev.NewOrderID,
		Type:      model.Limit,
		Side:      side,
		Price:     newPrice,
		Quantity:  newQty,
		State:     model.Active,
		Timestamp: ts,
	}
	if err := e.book.Insert(&replacement); err != nil {
		return nil, fatal(err)
	}

	return []report.Report{report.NewCancelReplace(e.nextReportID(), ts, ev.OrderID, ev.NewOrderID, side, newQty, newPrice, priorQty, priorPrice, orderType)}, nil
}
