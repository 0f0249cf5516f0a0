package engine_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/clock"
	"matchcore/internal/engine"
	"matchcore/internal/event"
	"matchcore/internal/model"
	"matchcore/internal/report"
)

func newEngine() *engine.Engine {
	return engine.New(clock.New(), decimal.NewFromFloat(0.01), zerolog.Nop())
}

func px(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// S1: simple cross.
func TestScenarioSimpleCross(t *testing.T) {
	e := newEngine()
	_, err := e.Process(event.NewLimitSubmit(1, 1, 0, model.Buy, 10, px(99.0)))
	require.NoError(t, err)
	_, err = e.Process(event.NewLimitSubmit(2, 2, 0, model.Sell, 10, px(101.0)))
	require.NoError(t, err)

	reports, err := e.Process(event.NewMarketSubmit(3, 3, 0, model.Buy, 10))
	require.NoError(t, err)

	var kinds []report.Kind
	for _, r := range reports {
		kinds = append(kinds, r.Kind)
	}
	require.Equal(t, []report.Kind{report.MarketSubmit, report.Execution, report.Execution}, kinds)

	trade, ok := e.LastTrade()
	require.True(t, ok)
	assert.Equal(t, uint64(10), trade.Quantity)
	assert.True(t, trade.Price.Equal(px(101.0)))
	assert.True(t, trade.IsBuyInitiated)

	_, askOk := e.BestAsk()
	assert.False(t, askOk)
}

// S2: walk the book.
func TestScenarioWalkTheBook(t *testing.T) {
	e := newEngine()
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(1, 1, 0, model.Sell, 5, px(101.0))))
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(2, 2, 0, model.Sell, 5, px(102.0))))

	reports, err := e.Process(event.NewMarketSubmit(3, 3, 0, model.Buy, 8))
	require.NoError(t, err)

	execs := filterKind(reports, report.Execution)
	require.Len(t, execs, 4)

	ask, ok := e.BestAsk()
	require.True(t, ok)
	assert.True(t, ask.Equal(px(102.0)))

	_, asks := e.TopLevels(10)
	require.Len(t, asks, 1)
	assert.Equal(t, uint64(2), asks[0].Size)
}

// S3: cancel preserves neighbours.
func TestScenarioCancelPreservesNeighbours(t *testing.T) {
	e := newEngine()
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(1, 1, 0, model.Buy, 10, px(99.0))))
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(2, 2, 0, model.Buy, 5, px(99.0))))
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(3, 3, 0, model.Buy, 10, px(98.0))))

	reports, err := e.Process(event.NewCancel(4, 2, 0))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.Cancel, reports[0].Kind)

	bid, ok := e.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Equal(px(99.0)))
}

// S4: modify price loses time priority.
func TestScenarioModifyPriceLosesTimePriority(t *testing.T) {
	e := newEngine()
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(1, 1, 0, model.Buy, 15, px(99.0))))
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(2, 2, 0, model.Buy, 5, px(99.0))))

	reports, err := e.Process(event.NewModifyPrice(3, 1, 0, px(100.0)))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ModifyPrice, reports[0].Kind)
	assert.Equal(t, uint64(15), reports[0].OrderQty)

	bid, ok := e.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Equal(px(100.0)))
}

// S5: cancel-replace decomposition.
func TestScenarioCancelReplace(t *testing.T) {
	e := newEngine()
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(1, 1, 0, model.Buy, 10, px(99.0))))

	qty := uint64(7)
	price := px(98.0)
	reports, err := e.Process(event.NewCancelReplace(2, 1, 0, 42, &qty, &price))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, report.CancelReplace, reports[0].Kind)

	bid, ok := e.BestBid()
	require.True(t, ok)
	assert.True(t, bid.Equal(px(98.0)))

	parts := reports[0].DecomposeIntoAtomicReports()
	require.Len(t, parts, 2)
	assert.Equal(t, report.Cancel, parts[0].Kind)
	assert.Equal(t, uint64(1), parts[0].OrderID)
	assert.Equal(t, report.LimitSubmit, parts[1].Kind)
	assert.Equal(t, uint64(42), parts[1].OrderID)
}

func TestDuplicateOrderIDIsFatal(t *testing.T) {
	e := newEngine()
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(1, 1, 0, model.Buy, 10, px(99.0))))

	_, err := e.Process(event.NewLimitSubmit(2, 1, 0, model.Buy, 5, px(99.0)))
	require.Error(t, err)
}

func TestCancelUnknownOrderIsRecoverableFailure(t *testing.T) {
	e := newEngine()
	reports, err := e.Process(event.NewCancel(1, 999, 0))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, report.Failure, reports[0].Status)
}

func TestStateConsistencyCheckAfterActivity(t *testing.T) {
	e := newEngine()
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(1, 1, 0, model.Buy, 10, px(99.0))))
	require.NoError(t, mustProcess(t, e, event.NewLimitSubmit(2, 2, 0, model.Sell, 4, px(101.0))))
	assert.NoError(t, e.StateConsistencyCheck())
}

// S6: replay equivalence.
func TestReplayEquivalence(t *testing.T) {
	e := newEngine()
	var allReports []report.Report
	e.AddOrderProcessingCallback(func(r report.Report) { allReports = append(allReports, r) })

	submits := []event.Event{
		event.NewLimitSubmit(1, 1, 0, model.Buy, 10, px(99.0)),
		event.NewLimitSubmit(2, 2, 0, model.Buy, 5, px(98.5)),
		event.NewLimitSubmit(3, 3, 0, model.Sell, 8, px(101.0)),
		event.NewLimitSubmit(4, 4, 0, model.Sell, 4, px(102.0)),
	}
	for _, ev := range submits {
		_, err := e.Process(ev)
		require.NoError(t, err)
	}
	_, err := e.Process(event.NewCancel(5, 2, 0))
	require.NoError(t, err)
	_, err = e.Process(event.NewModifyPrice(6, 1, 0, px(100.0)))
	require.NoError(t, err)

	rebuilt := newEngine()
	require.NoError(t, rebuilt.BuildFromReports(allReports))

	origBid, origOk := e.BestBid()
	newBid, newOk := rebuilt.BestBid()
	require.Equal(t, origOk, newOk)
	assert.True(t, origBid.Equal(newBid))

	origAsk, origAOk := e.BestAsk()
	newAsk, newAOk := rebuilt.BestAsk()
	require.Equal(t, origAOk, newAOk)
	assert.True(t, origAsk.Equal(newAsk))

	assert.NoError(t, rebuilt.StateConsistencyCheck())
}

// A market order that finds no resting opposite liquidity rests on the
// market queue; a later crossing limit order must drain it and leave
// it in a state consistent with the order invariant (quantity > 0 iff
// state is ACTIVE or PARTIAL_FILLED).
func TestScenarioLimitOrderFullyDrainsRestingMarketOrder(t *testing.T) {
	e := newEngine()
	_, err := e.Process(event.NewMarketSubmit(1, 1, 0, model.Buy, 10))
	require.NoError(t, err)

	reports, err := e.Process(event.NewLimitSubmit(2, 2, 0, model.Sell, 10, px(101.0)))
	require.NoError(t, err)

	execs := filterKind(reports, report.Execution)
	require.Len(t, execs, 2)

	removed := findRemoved(t, e, 1)
	assert.Equal(t, model.Filled, removed.State)
	assert.Equal(t, uint64(0), removed.Quantity)

	assert.NoError(t, e.StateConsistencyCheck())
}

func TestScenarioLimitOrderPartiallyDrainsRestingMarketOrder(t *testing.T) {
	e := newEngine()
	_, err := e.Process(event.NewMarketSubmit(1, 1, 0, model.Buy, 10))
	require.NoError(t, err)

	reports, err := e.Process(event.NewLimitSubmit(2, 2, 0, model.Sell, 4, px(101.0)))
	require.NoError(t, err)

	execs := filterKind(reports, report.Execution)
	require.Len(t, execs, 2)

	resting, ok := e.PeekMarketFront(model.Buy)
	require.True(t, ok)
	assert.Equal(t, model.PartialFilled, resting.State)
	assert.Equal(t, uint64(6), resting.Quantity)

	assert.NoError(t, e.StateConsistencyCheck())
}

func findRemoved(t *testing.T, e *engine.Engine, orderID uint64) model.Order {
	t.Helper()
	for _, o := range e.RemovedOrders() {
		if o.ID == orderID {
			return o
		}
	}
	t.Fatalf("order %d not found in removed history", orderID)
	return model.Order{}
}

func mustProcess(t *testing.T, e *engine.Engine, ev event.Event) error {
	t.Helper()
	_, err := e.Process(ev)
	return err
}

func filterKind(reports []report.Report, kind report.Kind) []report.Report {
	var out []report.Report
	for _, r := range reports {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
