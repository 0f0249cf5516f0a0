package simulator_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/clock"
	"matchcore/internal/engine"
	"matchcore/internal/event"
	"matchcore/internal/manager"
	"matchcore/internal/model"
	"matchcore/internal/simulator"
)

func newHarness() *manager.Manager {
	clk := clock.New()
	tick := decimal.NewFromFloat(0.01)
	eng := engine.New(clk, tick, zerolog.Nop())
	return manager.New(eng, clk, tick, "TEST", zerolog.Nop())
}

func bidAskGenerators() []simulator.Generator {
	return []simulator.Generator{
		{
			Kind:   event.LimitSubmit,
			Side:   model.Buy,
			Rate:   simulator.ConstantRate{P: 1},
			Sizer:  simulator.UniformSize{Min: 5, Max: 5},
			Pricer: simulator.GridPrice{Side: model.Buy, NumGrids: 3},
		},
		{
			Kind:   event.LimitSubmit,
			Side:   model.Sell,
			Rate:   simulator.ConstantRate{P: 1},
			Sizer:  simulator.UniformSize{Min: 5, Max: 5},
			Pricer: simulator.GridPrice{Side: model.Sell, NumGrids: 3},
		},
	}
}

func TestStepOneTickAdvancesCounterAndFiresGenerators(t *testing.T) {
	mgr := newHarness()
	cfg := simulator.Config{
		AnchorPrice: decimal.NewFromFloat(100),
		NumGrids:    3,
		RandomSeed:  42,
		Tick:        decimal.NewFromFloat(0.01),
	}
	sim := simulator.New(mgr, cfg, bidAskGenerators(), zerolog.Nop())

	require.NoError(t, sim.StepOneTick(mgr.Clock().Now()))
	assert.Equal(t, uint64(1), sim.TickCount())
	assert.Equal(t, uint64(2), sim.EventsFired())
}

func TestSimulateStopsAtMaxEvents(t *testing.T) {
	mgr := newHarness()
	cfg := simulator.Config{
		AnchorPrice:  decimal.NewFromFloat(100),
		NumGrids:     3,
		RandomSeed:   7,
		Tick:         decimal.NewFromFloat(0.01),
		HasMaxEvents: true,
		MaxNumEvents: 10,
	}
	sim := simulator.New(mgr, cfg, bidAskGenerators(), zerolog.Nop())

	require.NoError(t, sim.Simulate())
	assert.GreaterOrEqual(t, sim.EventsFired(), uint64(10))
}

func TestSimulateStopsAtMaxTimestamp(t *testing.T) {
	mgr := newHarness()
	cfg := simulator.Config{
		AnchorPrice: decimal.NewFromFloat(100),
		NumGrids:    3,
		RandomSeed:  3,
		Tick:        decimal.NewFromFloat(0.01),
		HasMaxTS:    true,
		MaxTimestamp: 20,
	}
	sim := simulator.New(mgr, cfg, bidAskGenerators(), zerolog.Nop())

	require.NoError(t, sim.Simulate())
	assert.GreaterOrEqual(t, mgr.Clock().Now(), uint64(20))
}

func TestAdvanceToTimestampReachesExactTarget(t *testing.T) {
	mgr := newHarness()
	cfg := simulator.Config{
		AnchorPrice: decimal.NewFromFloat(100),
		NumGrids:    3,
		RandomSeed:  11,
		Tick:        decimal.NewFromFloat(0.01),
	}
	sim := simulator.New(mgr, cfg, bidAskGenerators(), zerolog.Nop())

	require.NoError(t, sim.AdvanceToTimestamp(15))
	assert.Equal(t, uint64(15), mgr.Clock().Now())
}

func TestDeterministicReplayWithSameSeed(t *testing.T) {
	run := func(seed int64) uint64 {
		mgr := newHarness()
		cfg := simulator.Config{
			AnchorPrice:  decimal.NewFromFloat(100),
			NumGrids:     3,
			RandomSeed:   seed,
			Tick:         decimal.NewFromFloat(0.01),
			HasMaxEvents: true,
			MaxNumEvents: 50,
		}
		sim := simulator.New(mgr, cfg, bidAskGenerators(), zerolog.Nop())
		require.NoError(t, sim.Simulate())
		return sim.TickCount()
	}

	assert.Equal(t, run(99), run(99))
}

func TestConstantRateAlwaysFiresAtProbabilityOne(t *testing.T) {
	rate := simulator.ConstantRate{P: 1}
	mgr := newHarness()
	assert.Equal(t, 1.0, rate.Probability(mgr))
}

func TestDepthProportionalRateFallsBackToBaseWhenBookEmpty(t *testing.T) {
	mgr := newHarness()
	dp := simulator.DepthProportionalRate{Base: 0.2, Scale: 0.01, Side: model.Buy, PriceOffset: 5}
	assert.Equal(t, 0.2, dp.Probability(mgr))
}

func TestUniformSizeRespectsBounds(t *testing.T) {
	mgr := newHarness()
	cfg := simulator.Config{AnchorPrice: decimal.NewFromFloat(100), RandomSeed: 1, Tick: decimal.NewFromFloat(0.01)}
	sim := simulator.New(mgr, cfg, []simulator.Generator{{
		Kind:   event.LimitSubmit,
		Side:   model.Buy,
		Rate:   simulator.ConstantRate{P: 1},
		Sizer:  simulator.UniformSize{Min: 3, Max: 3},
		Pricer: simulator.GridPrice{Side: model.Buy, NumGrids: 1},
	}}, zerolog.Nop())

	require.NoError(t, sim.StepOneTick(mgr.Clock().Now()))
	active := mgr.Engine()
	bids, _ := active.TopLevels(1)
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(3), bids[0].Size)
}
