package engine

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"matchcore/internal/book"
	"matchcore/internal/clock"
	"matchcore/internal/event"
	"matchcore/internal/model"
	"matchcore/internal/report"
)

// LatencyRecord is emitted once per processed event (spec §4.D
// "Timing"): the wall-clock duration process(event) took.
type LatencyRecord struct {
	EventKind  event.Kind
	OrderID    uint64
	DurationNs int64
}

// BookSizeDelta is reserved per spec §4.G ("book-size deltas
// (reserved, currently no-op)"): the callback list exists so
// observers can register against it, but the engine never invokes it
// in this version.
type BookSizeDelta struct {
	Side  model.Side
	Price decimal.Decimal
	Delta int64
}

// Engine is the sole mutator of a single-symbol order book. It is
// strictly single-threaded and synchronous (spec §5): Process runs a
// submitted event to completion, including all callback dispatch,
// before returning.
type Engine struct {
	book *book.OrderBook
	clk  *clock.Clock
	tick decimal.Decimal

	reportIDs *clock.IDAllocator
	tradeIDs  *clock.IDAllocator

	processingCallbacks    []func(report.Report)
	latencyCallbacks       []func(LatencyRecord)
	bookSizeDeltaCallbacks []func(BookSizeDelta)

	removedOrders []model.Order
	lastTrade     *model.Trade

	processing bool

	log zerolog.Logger
}

// New returns an empty engine. tick is the configured price tick; the
// engine stores it but does not read it, since price snapping happens
// upstream in the manager (spec §4.F).
func New(clk *clock.Clock, tick decimal.Decimal, log zerolog.Logger) *Engine {
	return &Engine{
		book:      book.New(),
		clk:       clk,
		tick:      tick,
		reportIDs: clock.NewIDAllocator(),
		tradeIDs:  clock.NewIDAllocator(),
		log:       log.With().Str("component", "engine").Logger(),
	}
}

// AddOrderProcessingCallback registers an observer invoked, in
// registration order, once per report emitted (spec §4.D, §5).
func (e *Engine) AddOrderProcessingCallback(cb func(report.Report)) {
	e.processingCallbacks = append(e.processingCallbacks, cb)
}

// AddOrderEventLatencyCallback registers an observer invoked once per
// processed event with its wall-clock duration (spec §4.D "Timing").
func (e *Engine) AddOrderEventLatencyCallback(cb func(LatencyRecord)) {
	e.latencyCallbacks = append(e.latencyCallbacks, cb)
}

// AddBookSizeDeltaCallback registers a reserved, currently unfired
// observer (spec §4.G).
func (e *Engine) AddBookSizeDeltaCallback(cb func(BookSizeDelta)) {
	e.bookSizeDeltaCallbacks = append(e.bookSizeDeltaCallbacks, cb)
}

func (e *Engine) emit(r report.Report) {
	for _, cb := range e.processingCallbacks {
		cb(r)
	}
}

func (e *Engine) emitLatency(rec LatencyRecord) {
	for _, cb := range e.latencyCallbacks {
		cb(rec)
	}
}

// Process is the sole mutation entry point (spec §4.D). It dispatches
// ev to the matching submit/non-submit handler, returns the ordered
// reports produced, and fires registered callbacks synchronously
// before returning. A FatalError return means the engine's internal
// state may be inconsistent and must not be trusted further.
func (e *Engine) Process(ev event.Event) ([]report.Report, error) {
	if e.processing {
		return nil, fatal(ErrReentrantProcess)
	}
	e.processing = true
	defer func() { e.processing = false }()

	start := time.Now()
	reports, err := e.dispatch(ev)
	dur := time.Since(start)

	e.emitLatency(LatencyRecord{EventKind: ev.Kind, OrderID: ev.OrderID, DurationNs: dur.Nanoseconds()})

	if err != nil {
		var fe *FatalError
		if asFatal(err, &fe) {
			e.log.Error().Err(err).Uint64("order_id", ev.OrderID).Str("event", ev.Kind.String()).Msg("fatal invariant violation")
		}
		return reports, err
	}
	for _, r := range reports {
		e.emit(r)
	}
	return reports, nil
}

func asFatal(err error, target **FatalError) bool {
	fe, ok := err.(*FatalError)
	if ok {
		*target = fe
	}
	return ok
}

func (e *Engine) dispatch(ev event.Event) ([]report.Report, error) {
	switch ev.Kind {
	case event.LimitSubmit:
		return e.submitLimit(ev)
	case event.MarketSubmit:
		return e.submitMarket(ev)
	case event.Cancel:
		return e.processCancel(ev)
	case event.PartialCancel:
		return e.processPartialCancel(ev)
	case event.ModifyPrice:
		return e.processModifyPrice(ev)
	case event.ModifyQuantity:
		return e.processModifyQuantity(ev)
	case event.CancelReplace:
		return e.processCancelReplace(ev)
	default:
		return nil, fatal(ErrInvalidQuantity)
	}
}

// Build replays a sequence of events through Process, stopping at the
// first fatal error (spec §4.D build(log)).
func (e *Engine) Build(events []event.Event) error {
	for _, ev := range events {
		if _, err := e.Process(ev); err != nil {
			var fe *FatalError
			if asFatal(err, &fe) {
				return err
			}
		}
	}
	return nil
}

// BuildFromReports rebuilds state by converting each report to its
// replay event via MakeEvent and feeding the result through Build
// (spec §8.1.7 replay equivalence). Reports with no replay event
// (EXECUTION, LIMIT_PLACEMENT, and FAILURE reports) are skipped.
func (e *Engine) BuildFromReports(reports []report.Report) error {
	events := make([]event.Event, 0, len(reports))
	for _, r := range reports {
		if ev, ok := r.MakeEvent(); ok {
			events = append(events, ev)
		}
	}
	return e.Build(events)
}

// StateConsistencyCheck runs the book's local invariant checks (spec
// §7 state_consistency_check()).
func (e *Engine) StateConsistencyCheck() error {
	if err := e.book.StateConsistencyCheck(); err != nil {
		return fatal(err)
	}
	return nil
}

// Pure reads (spec §4.D).

func (e *Engine) BestBid() (decimal.Decimal, bool)  { return e.book.BestBidPrice() }
func (e *Engine) BestAsk() (decimal.Decimal, bool)  { return e.book.BestAskPrice() }
func (e *Engine) Mid() (decimal.Decimal, bool)      { return e.book.Mid() }
func (e *Engine) Micro() (decimal.Decimal, bool)    { return e.book.Micro() }
func (e *Engine) Spread() (decimal.Decimal, bool)   { return e.book.Spread() }
func (e *Engine) Imbalance() (decimal.Decimal, bool) { return e.book.Imbalance() }

func (e *Engine) TopLevels(n int) (bids, asks []book.LevelView) {
	return e.book.TopLevels(n)
}

// PeekMarketFront returns the head of side's resting market queue,
// for observers (tests, monitoring) that need to inspect unfilled
// market orders between processing steps.
func (e *Engine) PeekMarketFront(side model.Side) (*model.Order, bool) {
	return e.book.PeekMarketFront(side)
}

// LastTrade returns the most recent trade generated by the engine, if
// any.
func (e *Engine) LastTrade() (model.Trade, bool) {
	if e.lastTrade == nil {
		return model.Trade{}, false
	}
	return *e.lastTrade, true
}

// RemovedOrders returns the append-only history of orders that left
// the book (filled or cancelled), spec §3 "Lifecycles".
func (e *Engine) RemovedOrders() []model.Order {
	return e.removedOrders
}

func (e *Engine) recordRemoved(o model.Order) {
	e.removedOrders = append(e.removedOrders, o)
}

func (e *Engine) nextReportID() uint64 { return e.reportIDs.Next() }
func (e *Engine) nextTradeID() uint64  { return e.tradeIDs.Next() }
