// Package manager implements the order-event manager (spec §4.F): it
// turns user intents into engine events with tick-rounded prices, and
// mirrors active-order state from the engine's report stream, tagging
// each mirrored order with the symbol and a hashed agent identity.
package manager

import (
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"matchcore/internal/clock"
	"matchcore/internal/engine"
	"matchcore/internal/event"
	"matchcore/internal/model"
	"matchcore/internal/report"
)

// Manager wraps an Engine, creating events from user intents and
// maintaining two mirrors populated only from emitted reports:
// ActiveLimitOrders and QueuedMarketOrders (spec §4.F).
type Manager struct {
	eng  *engine.Engine
	clk  *clock.Clock
	tick decimal.Decimal

	orderIDs *clock.IDAllocator
	eventIDs *clock.IDAllocator

	sessionID   uuid.UUID
	agentIDHash uint64
	symbol      string

	activeLimitOrders map[uint64]model.Order
	queuedMarketOrders map[uint64]model.Order

	log zerolog.Logger
}

// New returns a Manager driving eng, tagging every order with symbol
// and a hash of a freshly generated session UUID (spec §4.F, standing
// in for the original's MPID/session concept).
func New(eng *engine.Engine, clk *clock.Clock, tick decimal.Decimal, symbol string, log zerolog.Logger) *Manager {
	session := uuid.New()
	h := fnv.New64a()
	_, _ = h.Write(session[:])

	m := &Manager{
		eng:                eng,
		clk:                clk,
		tick:               tick,
		orderIDs:           clock.NewIDAllocator(),
		eventIDs:           clock.NewIDAllocator(),
		sessionID:          session,
		agentIDHash:        h.Sum64(),
		symbol:             symbol,
		activeLimitOrders:  make(map[uint64]model.Order),
		queuedMarketOrders: make(map[uint64]model.Order),
		log:                log.With().Str("component", "manager").Str("symbol", symbol).Logger(),
	}
	eng.AddOrderProcessingCallback(m.onReport)
	return m
}

// SessionID returns the manager's session identifier (pre-hash).
func (m *Manager) SessionID() uuid.UUID { return m.sessionID }

// Engine returns the underlying engine, for collaborators (the
// simulator's rate samplers, the monitor) that need direct read
// access to book observables without duplicating it on Manager.
func (m *Manager) Engine() *engine.Engine { return m.eng }

// Clock returns the shared logical clock, for collaborators (the
// simulator) that need to advance or read it directly.
func (m *Manager) Clock() *clock.Clock { return m.clk }

// SubmitLimit creates and processes a LIMIT_SUBMIT event for a new
// order, rounding price to the configured tick (spec §4.F).
func (m *Manager) SubmitLimit(side model.Side, qty uint64, price decimal.Decimal) (event.Event, []report.Report, error) {
	orderID := m.orderIDs.Next()
	snapped := model.SnapToTick(price, m.tick)
	ev := event.NewLimitSubmit(m.eventIDs.Next(), orderID, m.clk.Now(), side, qty, snapped)
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// SubmitMarket creates and processes a MARKET_SUBMIT event.
func (m *Manager) SubmitMarket(side model.Side, qty uint64) (event.Event, []report.Report, error) {
	orderID := m.orderIDs.Next()
	ev := event.NewMarketSubmit(m.eventIDs.Next(), orderID, m.clk.Now(), side, qty)
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// Cancel creates and processes a CANCEL event against orderID.
func (m *Manager) Cancel(orderID uint64) (event.Event, []report.Report, error) {
	ev := event.NewCancel(m.eventIDs.Next(), orderID, m.clk.Now())
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// PartialCancel creates and processes a PARTIAL_CANCEL event.
func (m *Manager) PartialCancel(orderID uint64, cancelQty uint64) (event.Event, []report.Report, error) {
	ev := event.NewPartialCancel(m.eventIDs.Next(), orderID, m.clk.Now(), cancelQty)
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// ModifyPrice creates and processes a MODIFY_PRICE event, rounding
// newPrice to the configured tick.
func (m *Manager) ModifyPrice(orderID uint64, newPrice decimal.Decimal) (event.Event, []report.Report, error) {
	snapped := model.SnapToTick(newPrice, m.tick)
	ev := event.NewModifyPrice(m.eventIDs.Next(), orderID, m.clk.Now(), snapped)
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// ModifyQuantity creates and processes a MODIFY_QUANTITY event.
func (m *Manager) ModifyQuantity(orderID uint64, newQty uint64) (event.Event, []report.Report, error) {
	ev := event.NewModifyQuantity(m.eventIDs.Next(), orderID, m.clk.Now(), newQty)
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// CancelReplace creates and processes a CANCEL_REPLACE event,
// allocating the replacement order's id.
func (m *Manager) CancelReplace(orderID uint64, newQty *uint64, newPrice *decimal.Decimal) (event.Event, []report.Report, error) {
	newOrderID := m.orderIDs.Next()
	var snapped *decimal.Decimal
	if newPrice != nil {
		s := model.SnapToTick(*newPrice, m.tick)
		snapped = &s
	}
	ev := event.NewCancelReplace(m.eventIDs.Next(), orderID, m.clk.Now(), newOrderID, newQty, snapped)
	reports, err := m.eng.Process(ev)
	return ev, reports, err
}

// ActiveLimitOrder returns the mirrored state of a live limit order.
func (m *Manager) ActiveLimitOrder(orderID uint64) (model.Order, bool) {
	o, ok := m.activeLimitOrders[orderID]
	return o, ok
}

// QueuedMarketOrder returns the mirrored state of a resting market order.
func (m *Manager) QueuedMarketOrder(orderID uint64) (model.Order, bool) {
	o, ok := m.queuedMarketOrders[orderID]
	return o, ok
}

// onReport mutates the mirrors from emitted reports only, per spec
// §4.F's invariant. FAILURE reports leave observer state unchanged
// (spec §7).
func (m *Manager) onReport(r report.Report) {
	if r.Status != report.Success {
		return
	}
	switch r.Kind {
	case report.LimitSubmit:
		o := r.Order
		o.Meta = model.Meta{Symbol: m.symbol, AgentIDHash: m.agentIDHash}
		m.activeLimitOrders[r.OrderID] = o
	case report.MarketSubmit:
		// Market orders only enter the mirror if they end up queued;
		// LIMIT_PLACEMENT has no market-order analogue, so we track
		// provisionally and let a later event confirm queuing. Since
		// the engine gives no explicit "queued" report, we mirror on
		// first sight and drop on fill (see EXECUTION handling below).
		o := r.Order
		o.Meta = model.Meta{Symbol: m.symbol, AgentIDHash: m.agentIDHash}
		m.queuedMarketOrders[r.OrderID] = o
	case report.LimitPlacement:
		if o, ok := m.activeLimitOrders[r.OrderID]; ok {
			o.Quantity = r.OrderQty
			o.Price = r.OrderPrice
			m.activeLimitOrders[r.OrderID] = o
		}
	case report.Execution:
		m.applyExecution(r)
	case report.Cancel:
		delete(m.activeLimitOrders, r.OrderID)
		delete(m.queuedMarketOrders, r.OrderID)
	case report.PartialCancel:
		if o, ok := m.activeLimitOrders[r.OrderID]; ok {
			if o.Quantity <= r.CancelQty {
				delete(m.activeLimitOrders, r.OrderID)
			} else {
				o.Quantity -= r.CancelQty
				m.activeLimitOrders[r.OrderID] = o
			}
		}
	case report.ModifyPrice:
		if o, ok := m.activeLimitOrders[r.OrderID]; ok {
			o.Price = r.NewPrice
			m.activeLimitOrders[r.OrderID] = o
		}
	case report.ModifyQuantity:
		if o, ok := m.activeLimitOrders[r.OrderID]; ok {
			o.Quantity = r.NewQty
			m.activeLimitOrders[r.OrderID] = o
		}
	case report.CancelReplace:
		delete(m.activeLimitOrders, r.OrderID)
		m.activeLimitOrders[r.NewOrderID] = model.Order{
			ID:       r.NewOrderID,
			Type:     model.Limit,
			Side:     r.Side,
			Price:    r.NewPrice,
			Quantity: r.NewQty,
			State:    model.Active,
			Meta:     model.Meta{Symbol: m.symbol, AgentIDHash: m.agentIDHash},
		}
	}
}

func (m *Manager) applyExecution(r report.Report) {
	if o, ok := m.activeLimitOrders[r.OrderID]; ok {
		if o.Quantity <= r.FilledQty {
			delete(m.activeLimitOrders, r.OrderID)
		} else {
			o.Quantity -= r.FilledQty
			m.activeLimitOrders[r.OrderID] = o
		}
		return
	}
	if o, ok := m.queuedMarketOrders[r.OrderID]; ok {
		if o.Quantity <= r.FilledQty {
			delete(m.queuedMarketOrders, r.OrderID)
		} else {
			o.Quantity -= r.FilledQty
			m.queuedMarketOrders[r.OrderID] = o
		}
	}
}
