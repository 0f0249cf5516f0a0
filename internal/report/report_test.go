package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/model"
	"matchcore/internal/report"
)

func TestMakeEventLimitSubmit(t *testing.T) {
	order := model.Order{ID: 1, Side: model.Buy, Quantity: 10, Price: decimal.NewFromFloat(99.0)}
	r := report.NewLimitSubmit(1, 5, order)

	ev, ok := r.MakeEvent()
	require.True(t, ok)
	assert.Equal(t, uint64(1), ev.OrderID)
	assert.Equal(t, uint64(10), ev.Quantity)
	assert.True(t, ev.Price.Equal(decimal.NewFromFloat(99.0)))
}

func TestMakeEventExecutionHasNoReplay(t *testing.T) {
	r := report.NewExecution(1, 1, 1, model.Buy, model.Limit, 2, 1, 5, decimal.NewFromFloat(99.0), false, report.ExecFilled)
	_, ok := r.MakeEvent()
	assert.False(t, ok)
}

// TestCancelReplaceDecomposition grounds scenario S5 (spec §8.3).
func TestCancelReplaceDecomposition(t *testing.T) {
	r := report.NewCancelReplace(1, 10, 1, 42, model.Buy, 7, decimal.NewFromFloat(98.0), 10, decimal.NewFromFloat(99.0), model.Limit)

	parts := r.DecomposeIntoAtomicReports()
	require.Len(t, parts, 2)

	assert.Equal(t, report.Cancel, parts[0].Kind)
	assert.Equal(t, uint64(1), parts[0].OrderID)
	assert.Equal(t, uint64(10), parts[0].OrderQty)
	assert.True(t, parts[0].OrderPrice.Equal(decimal.NewFromFloat(99.0)))

	assert.Equal(t, report.LimitSubmit, parts[1].Kind)
	assert.Equal(t, uint64(42), parts[1].OrderID)
	assert.Equal(t, uint64(7), parts[1].Order.Quantity)
	assert.True(t, parts[1].Order.Price.Equal(decimal.NewFromFloat(98.0)))
}

func TestModifyQuantityGrowthDecomposition(t *testing.T) {
	r := report.NewModifyQuantity(1, 10, 1, model.Buy, decimal.NewFromFloat(99.0), 20, 10, decimal.NewFromFloat(99.0), model.Limit)

	parts := r.DecomposeIntoAtomicReports()
	require.Len(t, parts, 2)
	assert.Equal(t, report.Cancel, parts[0].Kind)
	assert.Equal(t, uint64(10), parts[0].OrderQty)
	assert.Equal(t, report.LimitSubmit, parts[1].Kind)
	assert.Equal(t, uint64(20), parts[1].Order.Quantity)
}

func TestNonCompositeDecomposesToItself(t *testing.T) {
	r := report.NewCancel(1, 1, 1, model.Buy, model.Limit, 10, decimal.NewFromFloat(99.0), true)
	parts := r.DecomposeIntoAtomicReports()
	require.Len(t, parts, 1)
	assert.Equal(t, report.Cancel, parts[0].Kind)
}

func TestCancelFailureReportCarriesNoSnapshot(t *testing.T) {
	r := report.NewCancel(1, 1, 99, model.Buy, model.Limit, 0, decimal.Decimal{}, false)
	assert.Equal(t, report.Failure, r.Status)
	_, ok := r.MakeEvent()
	assert.False(t, ok)
}
