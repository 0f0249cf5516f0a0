package report

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/event"
	"matchcore/internal/model"
)

// MakeEvent returns the minimal event that, replayed through a fresh
// engine, reproduces the state transition this report recorded (spec
// §6.2, §8.1.7 replay equivalence). ok is false for EXECUTION and
// LIMIT_PLACEMENT, which spec §6.2 says are derived from a submit and
// carry no independent replay event, and for any FAILURE report,
// which recorded no state transition.
func (r Report) MakeEvent() (ev event.Event, ok bool) {
	if r.Status != Success {
		return event.Event{}, false
	}
	switch r.Kind {
	case LimitSubmit:
		return event.NewLimitSubmit(0, r.OrderID, r.Ts, r.Side, r.Order.Quantity, r.Order.Price), true
	case MarketSubmit:
		return event.NewMarketSubmit(0, r.OrderID, r.Ts, r.Side, r.Order.Quantity), true
	case Cancel:
		return event.NewCancel(0, r.OrderID, r.Ts), true
	case PartialCancel:
		return event.NewPartialCancel(0, r.OrderID, r.Ts, r.CancelQty), true
	case ModifyPrice:
		return event.NewModifyPrice(0, r.OrderID, r.Ts, r.NewPrice), true
	case ModifyQuantity:
		return event.NewModifyQuantity(0, r.OrderID, r.Ts, r.NewQty), true
	case CancelReplace:
		qty := r.NewQty
		price := r.NewPrice
		return event.NewCancelReplace(0, r.OrderID, r.Ts, r.NewOrderID, &qty, &price), true
	default: // Execution, LimitPlacement
		return event.Event{}, false
	}
}

// DecomposeIntoAtomicReports splits a CANCEL_REPLACE report, or the
// growth case of a MODIFY_QUANTITY report, into the equivalent atomic
// [CANCEL, LIMIT_SUBMIT] pair (spec §6.2, §8.2 atomic decomposition
// law). Any other Kind decomposes to itself, since spec only names
// these two as composite.
func (r Report) DecomposeIntoAtomicReports() []Report {
	switch r.Kind {
	case CancelReplace:
		cancel := Report{
			Kind:       Cancel,
			ReportID:   r.ReportID,
			Ts:         r.Ts,
			OrderID:    r.OrderID,
			Side:       r.Side,
			Status:     Success,
			OrderType:  r.priorType,
			OrderQty:   r.priorQty,
			OrderPrice: r.priorPrice,
		}
		submit := Report{
			Kind:     LimitSubmit,
			ReportID: r.ReportID,
			Ts:       r.Ts,
			OrderID:  r.NewOrderID,
			Side:     r.Side,
			Status:   Success,
			Order:    limitSnapshot(r.NewOrderID, r.Side, r.NewQty, r.NewPrice, r.Ts),
		}
		return []Report{cancel, submit}
	case ModifyQuantity:
		cancel := Report{
			Kind:       Cancel,
			ReportID:   r.ReportID,
			Ts:         r.Ts,
			OrderID:    r.OrderID,
			Side:       r.Side,
			Status:     Success,
			OrderType:  r.priorType,
			OrderQty:   r.priorQty,
			OrderPrice: r.priorPrice,
		}
		submit := Report{
			Kind:     LimitSubmit,
			ReportID: r.ReportID,
			Ts:       r.Ts,
			OrderID:  r.OrderID,
			Side:     r.Side,
			Status:   Success,
			Order:    limitSnapshot(r.OrderID, r.Side, r.NewQty, r.OrderPrice, r.Ts),
		}
		return []Report{cancel, submit}
	default:
		return []Report{r}
	}
}

func limitSnapshot(orderID uint64, side model.Side, qty uint64, price decimal.Decimal, ts uint64) model.Order {
	return model.Order{
		ID:        orderID,
		Type:      model.Limit,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		State:     model.Active,
		Timestamp: ts,
	}
}
