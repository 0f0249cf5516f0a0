// Package event implements the engine's input tagged variant (spec
// §6.1), expressed as a flat struct discriminated by Kind rather than
// the original's per-event-type class hierarchy (spec §9 "Dispatch
// over report kinds").
package event

import (
	"errors"

	"github.com/shopspring/decimal"

	"matchcore/internal/model"
)

// Kind discriminates the event variants of spec §6.1.
type Kind int

const (
	LimitSubmit Kind = iota
	MarketSubmit
	Cancel
	PartialCancel
	ModifyPrice
	ModifyQuantity
	CancelReplace
)

func (k Kind) String() string {
	switch k {
	case LimitSubmit:
		return "LIMIT_SUBMIT"
	case MarketSubmit:
		return "MARKET_SUBMIT"
	case Cancel:
		return "CANCEL"
	case PartialCancel:
		return "PARTIAL_CANCEL"
	case ModifyPrice:
		return "MODIFY_PRICE"
	case ModifyQuantity:
		return "MODIFY_QUANTITY"
	case CancelReplace:
		return "CANCEL_REPLACE"
	default:
		return "UNKNOWN_EVENT_KIND"
	}
}

// Event is the single tagged-union representation for every engine
// input variant in spec §6.1. Only the fields relevant to Kind are
// populated; Validate checks that the required subset is present.
type Event struct {
	Kind    Kind
	EventID uint64
	OrderID uint64
	Ts      uint64
	Side    model.Side

	Quantity   uint64          // LIMIT_SUBMIT, MARKET_SUBMIT
	Price      decimal.Decimal // LIMIT_SUBMIT
	CancelQty  uint64          // PARTIAL_CANCEL
	NewPrice   decimal.Decimal // MODIFY_PRICE
	NewQty     uint64          // MODIFY_QUANTITY
	NewOrderID uint64          // CANCEL_REPLACE

	ReplaceQty   *uint64          // CANCEL_REPLACE, optional
	ReplacePrice *decimal.Decimal // CANCEL_REPLACE, optional
}

var (
	ErrZeroQuantity  = errors.New("event: quantity must be > 0")
	ErrNegativePrice = errors.New("event: price must be >= 0")
)

// Validate checks the per-kind field constraints of spec §6.1.
func (e *Event) Validate() error {
	switch e.Kind {
	case LimitSubmit:
		if e.Quantity == 0 {
			return ErrZeroQuantity
		}
		if e.Price.Sign() < 0 {
			return ErrNegativePrice
		}
	case MarketSubmit:
		if e.Quantity == 0 {
			return ErrZeroQuantity
		}
	case PartialCancel:
		if e.CancelQty == 0 {
			return ErrZeroQuantity
		}
	case ModifyPrice:
		if e.NewPrice.Sign() < 0 {
			return ErrNegativePrice
		}
	case ModifyQuantity:
		// new_qty >= 0 is always satisfied by uint64.
	case CancelReplace:
		if e.ReplacePrice != nil && e.ReplacePrice.Sign() < 0 {
			return ErrNegativePrice
		}
	case Cancel:
		// no extra fields to validate.
	}
	return nil
}

// NewLimitSubmit constructs a LIMIT_SUBMIT event.
func NewLimitSubmit(eventID, orderID, ts uint64, side model.Side, qty uint64, price decimal.Decimal) Event {
	return Event{Kind: LimitSubmit, EventID: eventID, OrderID: orderID, Ts: ts, Side: side, Quantity: qty, Price: price}
}

// NewMarketSubmit constructs a MARKET_SUBMIT event.
func NewMarketSubmit(eventID, orderID, ts uint64, side model.Side, qty uint64) Event {
	return Event{Kind: MarketSubmit, EventID: eventID, OrderID: orderID, Ts: ts, Side: side, Quantity: qty}
}

// NewCancel constructs a CANCEL event.
func NewCancel(eventID, orderID, ts uint64) Event {
	return Event{Kind: Cancel, EventID: eventID, OrderID: orderID, Ts: ts}
}

// NewPartialCancel constructs a PARTIAL_CANCEL event.
func NewPartialCancel(eventID, orderID, ts uint64, cancelQty uint64) Event {
	return Event{Kind: PartialCancel, EventID: eventID, OrderID: orderID, Ts: ts, CancelQty: cancelQty}
}

// NewModifyPrice constructs a MODIFY_PRICE event.
func NewModifyPrice(eventID, orderID, ts uint64, newPrice decimal.Decimal) Event {
	return Event{Kind: ModifyPrice, EventID: eventID, OrderID: orderID, Ts: ts, NewPrice: newPrice}
}

// NewModifyQuantity constructs a MODIFY_QUANTITY event.
func NewModifyQuantity(eventID, orderID, ts uint64, newQty uint64) Event {
	return Event{Kind: ModifyQuantity, EventID: eventID, OrderID: orderID, Ts: ts, NewQty: newQty}
}

// NewCancelReplace constructs a CANCEL_REPLACE event. replaceQty and
// replacePrice are optional per spec §6.1.
func NewCancelReplace(eventID, orderID, ts, newOrderID uint64, replaceQty *uint64, replacePrice *decimal.Decimal) Event {
	return Event{
		Kind:         CancelReplace,
		EventID:      eventID,
		OrderID:      orderID,
		Ts:           ts,
		NewOrderID:   newOrderID,
		ReplaceQty:   replaceQty,
		ReplacePrice: replacePrice,
	}
}
