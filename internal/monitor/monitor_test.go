package monitor_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/clock"
	"matchcore/internal/engine"
	"matchcore/internal/manager"
	"matchcore/internal/model"
	"matchcore/internal/monitor"
	"matchcore/internal/report"
)

func newHarness(policy monitor.QualifyPolicy, topN int) (*manager.Manager, *monitor.Monitor) {
	clk := clock.New()
	tick := decimal.NewFromFloat(0.01)
	eng := engine.New(clk, tick, zerolog.Nop())
	mgr := manager.New(eng, clk, tick, "TEST", zerolog.Nop())
	m := monitor.New(eng, policy, topN, 1000, monitor.NewMetrics())
	return mgr, m
}

func TestEachOrderEventQualifiesEveryReport(t *testing.T) {
	mgr, m := newHarness(monitor.EachOrderEvent, 10)

	_, _, err := mgr.SubmitLimit(model.Buy, 10, decimal.NewFromFloat(99))
	require.NoError(t, err)
	_, _, err = mgr.SubmitLimit(model.Sell, 5, decimal.NewFromFloat(101))
	require.NoError(t, err)

	assert.Equal(t, len(m.ReportHistory()), len(m.History()))
	assert.GreaterOrEqual(t, len(m.History()), 2)
}

func TestEachTradeOnlyQualifiesExecutionReports(t *testing.T) {
	mgr, m := newHarness(monitor.EachTrade, 10)

	_, _, err := mgr.SubmitLimit(model.Sell, 10, decimal.NewFromFloat(100))
	require.NoError(t, err)
	_, _, err = mgr.SubmitLimit(model.Buy, 10, decimal.NewFromFloat(100))
	require.NoError(t, err)

	require.Equal(t, len(m.ReportHistory()), len(m.History()))
	for _, r := range m.ReportHistory() {
		assert.Equal(t, "EXECUTION", r.Kind.String())
	}
	assert.NotZero(t, len(m.History()))
}

func TestTradeDedupCountsEachTradeOnce(t *testing.T) {
	mgr, m := newHarness(monitor.EachOrderEvent, 10)

	_, _, err := mgr.SubmitLimit(model.Sell, 10, decimal.NewFromFloat(100))
	require.NoError(t, err)
	_, _, err = mgr.SubmitLimit(model.Buy, 10, decimal.NewFromFloat(100))
	require.NoError(t, err)

	agg := m.Aggregates()
	assert.Equal(t, uint64(1), agg.TradeCount)
	assert.Equal(t, uint64(10), agg.CumulativeTradeVolume)
}

func TestReportSnapshotParityInvariant(t *testing.T) {
	mgr, m := newHarness(monitor.EachMarketOrder, 10)

	_, _, err := mgr.SubmitLimit(model.Sell, 10, decimal.NewFromFloat(100))
	require.NoError(t, err)
	_, _, err = mgr.SubmitMarket(model.Buy, 4)
	require.NoError(t, err)
	_, _, err = mgr.SubmitLimit(model.Buy, 3, decimal.NewFromFloat(98))
	require.NoError(t, err)

	assert.Equal(t, len(m.ReportHistory()), len(m.History()))
	for _, r := range m.ReportHistory() {
		assert.Equal(t, "MARKET_SUBMIT", r.Kind.String())
	}
}

func TestTopOfBookTickSuppressesDeepLevels(t *testing.T) {
	mgr, m := newHarness(monitor.TopOfBookTick, 1)
	totalReports := 0
	mgr.Engine().AddOrderProcessingCallback(func(report.Report) { totalReports++ })

	_, _, err := mgr.SubmitLimit(model.Buy, 5, decimal.NewFromFloat(99))
	require.NoError(t, err)
	_, _, err = mgr.SubmitLimit(model.Buy, 5, decimal.NewFromFloat(50))
	require.NoError(t, err)

	assert.Equal(t, len(m.ReportHistory()), len(m.History()))
	assert.Less(t, len(m.History()), totalReports)
}

// A crossing LIMIT order that fully sweeps the only resting level on
// the opposite side is a top-of-book tick even though the swept price
// no longer appears anywhere once the sweep completes.
func TestTopOfBookTickQualifiesFullLevelSweep(t *testing.T) {
	mgr, m := newHarness(monitor.TopOfBookTick, 1)

	_, _, err := mgr.SubmitLimit(model.Sell, 5, decimal.NewFromFloat(101))
	require.NoError(t, err)
	before := len(m.History())
	require.NotZero(t, before)

	_, _, err = mgr.SubmitLimit(model.Buy, 5, decimal.NewFromFloat(101))
	require.NoError(t, err)

	assert.Equal(t, len(m.ReportHistory()), len(m.History()))
	assert.Greater(t, len(m.History()), before)

	last := m.History()[len(m.History())-1]
	assert.False(t, last.HasAsk)
}

func TestSnapshotCarriesBookObservables(t *testing.T) {
	mgr, m := newHarness(monitor.EachOrderEvent, 10)

	_, _, err := mgr.SubmitLimit(model.Buy, 10, decimal.NewFromFloat(99))
	require.NoError(t, err)
	_, _, err = mgr.SubmitLimit(model.Sell, 10, decimal.NewFromFloat(101))
	require.NoError(t, err)

	snaps := m.History()
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	require.True(t, last.HasBid)
	require.True(t, last.HasAsk)
	require.True(t, last.HasMid)
	assert.True(t, last.Mid.Equal(decimal.NewFromFloat(100)))
}
