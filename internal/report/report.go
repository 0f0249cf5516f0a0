// Package report implements the engine's output tagged variant (spec
// §6.2): a flat struct discriminated by Kind, replacing the original's
// visitor-dispatched report class hierarchy per spec §9.
package report

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/model"
)

// Kind discriminates the report variants of spec §6.2.
type Kind int

const (
	Execution Kind = iota
	LimitSubmit
	LimitPlacement
	MarketSubmit
	Cancel
	PartialCancel
	CancelReplace
	ModifyPrice
	ModifyQuantity
)

func (k Kind) String() string {
	switch k {
	case Execution:
		return "EXECUTION"
	case LimitSubmit:
		return "LIMIT_SUBMIT"
	case LimitPlacement:
		return "LIMIT_PLACEMENT"
	case MarketSubmit:
		return "MARKET_SUBMIT"
	case Cancel:
		return "CANCEL"
	case PartialCancel:
		return "PARTIAL_CANCEL"
	case CancelReplace:
		return "CANCEL_REPLACE"
	case ModifyPrice:
		return "MODIFY_PRICE"
	case ModifyQuantity:
		return "MODIFY_QUANTITY"
	default:
		return "UNKNOWN_REPORT_KIND"
	}
}

// Status is the business-logic outcome of the event that produced the
// report (spec §6.2, §7).
type Status int

const (
	Success Status = iota
	Failure
)

func (s Status) String() string {
	if s == Success {
		return "SUCCESS"
	}
	return "FAILURE"
}

// ExecType is the EXECUTION report's resulting fill state.
type ExecType int

const (
	ExecFilled ExecType = iota
	ExecPartialFilled
)

func (e ExecType) String() string {
	if e == ExecFilled {
		return "FILLED"
	}
	return "PARTIAL_FILLED"
}

// Report is the single tagged-union representation for every engine
// output variant in spec §6.2. Fields are grouped by which Kind(s)
// populate them; fields shared in meaning across kinds (e.g. the
// "order_qty"/"order_price" pair spec §6.2 repeats for CANCEL,
// MODIFY_PRICE, MODIFY_QUANTITY) are represented once.
type Report struct {
	Kind        Kind
	ReportID    uint64
	Ts          uint64
	OrderID     uint64
	Side        model.Side
	Status      Status
	AgentIDHash uint64
	HasAgentID  bool
	LatencyNs   int64
	HasLatency  bool
	Message     string

	// EXECUTION
	OrderType    model.OrderType
	MatchOrderID uint64
	TradeID      uint64
	FilledQty    uint64
	FilledPrice  decimal.Decimal
	IsMaker      bool
	ExecType     ExecType

	// LIMIT_SUBMIT / MARKET_SUBMIT: snapshot of the incoming order.
	Order model.Order

	// LIMIT_PLACEMENT: order_qty_remaining, order_price.
	// CANCEL: order_qty (optional), order_price (optional) — the
	// order's quantity/price at the time it was removed.
	// MODIFY_PRICE: order_qty (pre-move), new_price.
	// MODIFY_QUANTITY: order_price, new_qty.
	OrderQty   uint64
	OrderPrice decimal.Decimal
	NewPrice   decimal.Decimal
	NewQty     uint64

	// PARTIAL_CANCEL: cancel_qty, order_qty_before, order_price.
	CancelQty      uint64
	OrderQtyBefore uint64

	// CANCEL_REPLACE: new_order_id, new_qty, new_price (reuses
	// NewQty/NewPrice above).
	NewOrderID uint64

	// priorQty/priorPrice/priorType are not part of the spec §6.2 wire
	// shape; they record the replaced/grown order's state immediately
	// before the mutation so DecomposeIntoAtomicReports (spec §6.2,
	// §8.2) can reconstruct an equivalent [CANCEL, LIMIT_SUBMIT] pair
	// without re-reading the book.
	priorQty   uint64
	priorPrice decimal.Decimal
	priorType  model.OrderType
}

// WithAgentIDHash and WithLatency attach the optional common fields
// spec §6.2 lists on every report variant.
func (r Report) WithAgentIDHash(hash uint64) Report {
	r.AgentIDHash = hash
	r.HasAgentID = true
	return r
}

func (r Report) WithLatency(ns int64) Report {
	r.LatencyNs = ns
	r.HasLatency = true
	return r
}

func (r Report) WithMessage(msg string) Report {
	r.Message = msg
	return r
}

// Clone returns a value copy of the report; Report contains no
// pointers into engine-owned state, so a value copy is a safe,
// independent snapshot.
func (r Report) Clone() Report {
	return r
}
