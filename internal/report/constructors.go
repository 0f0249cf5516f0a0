package report

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/model"
)

// NewLimitSubmit builds the receipt report for an incoming limit
// order (spec §6.2 LIMIT_SUBMIT).
func NewLimitSubmit(reportID, ts uint64, order model.Order) Report {
	return Report{
		Kind:     LimitSubmit,
		ReportID: reportID,
		Ts:       ts,
		OrderID:  order.ID,
		Side:     order.Side,
		Status:   Success,
		Order:    order,
	}
}

// NewMarketSubmit builds the receipt report for an incoming market
// order (spec §6.2 MARKET_SUBMIT).
func NewMarketSubmit(reportID, ts uint64, order model.Order) Report {
	return Report{
		Kind:     MarketSubmit,
		ReportID: reportID,
		Ts:       ts,
		OrderID:  order.ID,
		Side:     order.Side,
		Status:   Success,
		Order:    order,
	}
}

// NewLimitPlacement builds the report emitted when a limit order rests
// in the book after exhausting the match loop (spec §6.2 LIMIT_PLACEMENT).
func NewLimitPlacement(reportID, ts, orderID uint64, side model.Side, qtyRemaining uint64, price decimal.Decimal) Report {
	return Report{
		Kind:       LimitPlacement,
		ReportID:   reportID,
		Ts:         ts,
		OrderID:    orderID,
		Side:       side,
		Status:     Success,
		OrderQty:   qtyRemaining,
		OrderPrice: price,
	}
}

// NewExecution builds one side (taker or maker) of an EXECUTION report
// pair (spec §6.2 EXECUTION, §4.D match step).
func NewExecution(reportID, ts, orderID uint64, side model.Side, orderType model.OrderType, matchOrderID, tradeID uint64, filledQty uint64, filledPrice decimal.Decimal, isMaker bool, execType ExecType) Report {
	return Report{
		Kind:         Execution,
		ReportID:     reportID,
		Ts:           ts,
		OrderID:      orderID,
		Side:         side,
		Status:       Success,
		OrderType:    orderType,
		MatchOrderID: matchOrderID,
		TradeID:      tradeID,
		FilledQty:    filledQty,
		FilledPrice:  filledPrice,
		IsMaker:      isMaker,
		ExecType:     execType,
	}
}

// NewCancel builds a successful CANCEL report, or a FAILURE report
// with no snapshot when orderFound is false (spec §7 recoverable
// lookup failure).
func NewCancel(reportID, ts, orderID uint64, side model.Side, orderType model.OrderType, qty uint64, price decimal.Decimal, orderFound bool) Report {
	r := Report{
		Kind:     Cancel,
		ReportID: reportID,
		Ts:       ts,
		OrderID:  orderID,
		Side:     side,
	}
	if !orderFound {
		r.Status = Failure
		return r
	}
	r.Status = Success
	r.OrderType = orderType
	r.OrderQty = qty
	r.OrderPrice = price
	return r
}

// NewPartialCancel builds a PARTIAL_CANCEL report (spec §6.2
// PARTIAL_CANCEL). Also used for the shrink case of MODIFY_QUANTITY
// and the over-cancel case of PARTIAL_CANCEL per SPEC_FULL.md §12.
func NewPartialCancel(reportID, ts, orderID uint64, side model.Side, orderType model.OrderType, cancelQty, qtyBefore uint64, price decimal.Decimal) Report {
	return Report{
		Kind:           PartialCancel,
		ReportID:       reportID,
		Ts:             ts,
		OrderID:        orderID,
		Side:           side,
		Status:         Success,
		OrderType:      orderType,
		CancelQty:      cancelQty,
		OrderQtyBefore: qtyBefore,
		OrderPrice:     price,
	}
}

// NewModifyPrice builds a MODIFY_PRICE report (spec §6.2). It records
// no prior-state fields; DecomposeIntoAtomicReports returns a
// MODIFY_PRICE report unchanged.
func NewModifyPrice(reportID, ts, orderID uint64, side model.Side, orderQty uint64, newPrice decimal.Decimal) Report {
	return Report{
		Kind:      ModifyPrice,
		ReportID:  reportID,
		Ts:        ts,
		OrderID:   orderID,
		Side:      side,
		Status:    Success,
		OrderQty:  orderQty,
		NewPrice:  newPrice,
	}
}

// NewModifyQuantity builds a MODIFY_QUANTITY report for the growth
// case (spec §6.2, SPEC_FULL.md §12: growth loses time priority and
// is subject to the atomic-decomposition law). priorQty/priorPrice
// record the order's state immediately before the grow so Decompose
// can reconstruct the equivalent [CANCEL, LIMIT_SUBMIT] pair.
func NewModifyQuantity(reportID, ts, orderID uint64, side model.Side, orderPrice decimal.Decimal, newQty, priorQty uint64, priorPrice decimal.Decimal, orderType model.OrderType) Report {
	return Report{
		Kind:       ModifyQuantity,
		ReportID:   reportID,
		Ts:         ts,
		OrderID:    orderID,
		Side:       side,
		Status:     Success,
		OrderPrice: orderPrice,
		NewQty:     newQty,
		OrderType:  orderType,
		priorQty:   priorQty,
		priorPrice: priorPrice,
		priorType:  orderType,
	}
}

// NewCancelReplace builds a CANCEL_REPLACE report (spec §6.2).
// priorQty/priorPrice/priorType record the replaced order's state
// immediately before replacement, required by DecomposeIntoAtomicReports.
func NewCancelReplace(reportID, ts, orderID, newOrderID uint64, side model.Side, newQty uint64, newPrice decimal.Decimal, priorQty uint64, priorPrice decimal.Decimal, priorType model.OrderType) Report {
	return Report{
		Kind:       CancelReplace,
		ReportID:   reportID,
		Ts:         ts,
		OrderID:    orderID,
		Side:       side,
		Status:     Success,
		NewOrderID: newOrderID,
		NewQty:     newQty,
		NewPrice:   newPrice,
		priorQty:   priorQty,
		priorPrice: priorPrice,
		priorType:  priorType,
	}
}
