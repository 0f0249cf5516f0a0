// Package monitor implements the engine monitor (spec §4.G): it
// consumes the report stream and maintains a bounded ring of
// snapshots and rolling aggregates, driven solely by the engine's
// callbacks.
package monitor

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/book"
	"matchcore/internal/engine"
	"matchcore/internal/model"
	"matchcore/internal/report"
)

const defaultRollingWindow = 100

// Monitor samples engine observables on qualifying reports and keeps
// a parallel ring of the originating reports, preserving the spec
// §4.G invariant |reports| == |snapshots|.
type Monitor struct {
	eng    *engine.Engine
	policy QualifyPolicy
	topN   int

	history       *Ring[Snapshot]
	reportHistory *Ring[report.Report]

	agg Aggregates

	lastTradeID    uint64
	hasLastTradeID bool

	hasLastTrade   bool
	lastTradePrice decimal.Decimal
	lastTradeQty   uint64
	lastTradeSign  int

	rollingWindow []float64
	rollingCap    int

	prevBidPrices []decimal.Decimal
	prevAskPrices []decimal.Decimal

	metrics *Metrics
}

// New registers processing-report, book-size-delta (reserved, no-op),
// and latency callbacks on eng and returns a Monitor sampling with
// policy, keeping up to topN levels per side and maxHistory samples.
// metrics may be nil (no Prometheus export).
func New(eng *engine.Engine, policy QualifyPolicy, topN, maxHistory int, metrics *Metrics) *Monitor {
	m := &Monitor{
		eng:           eng,
		policy:        policy,
		topN:          topN,
		history:       NewRing[Snapshot](maxHistory),
		reportHistory: NewRing[report.Report](maxHistory),
		agg:           Aggregates{CumulativeNotional: decimal.Zero},
		rollingCap:    defaultRollingWindow,
		metrics:       metrics,
	}
	bids, asks := eng.TopLevels(topN)
	m.prevBidPrices = topPrices(bids)
	m.prevAskPrices = topPrices(asks)
	eng.AddOrderProcessingCallback(m.onReport)
	eng.AddOrderEventLatencyCallback(func(engine.LatencyRecord) {})
	eng.AddBookSizeDeltaCallback(func(engine.BookSizeDelta) {})
	return m
}

// History returns all stored snapshots, oldest first.
func (m *Monitor) History() []Snapshot { return m.history.Slice() }

// ReportHistory returns all stored originating reports, oldest first,
// index-aligned with History().
func (m *Monitor) ReportHistory() []report.Report { return m.reportHistory.Slice() }

// Aggregates returns a value copy of the current cumulative counters.
func (m *Monitor) Aggregates() Aggregates { return m.agg }

func (m *Monitor) onReport(r report.Report) {
	m.updateAggregates(r)
	if m.qualifies(r) {
		snap := m.buildSnapshot(r)
		m.history.Push(snap)
		m.reportHistory.Push(r)
		m.metrics.observe(snap)
	}
	// Cache the post-mutation top-N price set so the next report's
	// qualifying check can tell whether THIS report moved the top of
	// book, regardless of which report carries which price.
	bids, asks := m.eng.TopLevels(m.topN)
	m.prevBidPrices = topPrices(bids)
	m.prevAskPrices = topPrices(asks)
}

// updateAggregates runs before the qualifying check so counts stay
// accurate even when the sample itself is suppressed (spec §4.G).
// EXECUTION reports are deduplicated on trade_id (spec §9
// "Double-counted execution reports"), so a single trade's maker and
// taker reports only increment the trade aggregates once.
func (m *Monitor) updateAggregates(r report.Report) {
	switch r.Kind {
	case report.LimitSubmit:
		m.agg.NewLimitCount++
	case report.MarketSubmit:
		m.agg.NewMarketCount++
	case report.Cancel:
		if r.Status == report.Success {
			m.agg.CancelCount++
		}
	case report.PartialCancel:
		if r.Status == report.Success {
			m.agg.CancelCount++
		}
	case report.ModifyPrice:
		if r.Status == report.Success {
			m.agg.ModifyPriceCount++
		}
	case report.ModifyQuantity:
		if r.Status == report.Success {
			m.agg.ModifyQuantityCount++
		}
	case report.Execution:
		if m.hasLastTradeID && m.lastTradeID == r.TradeID {
			return
		}
		m.hasLastTradeID = true
		m.lastTradeID = r.TradeID
		m.agg.TradeCount++
		m.agg.CumulativeTradeVolume += r.FilledQty
		m.agg.CumulativeNotional = m.agg.CumulativeNotional.Add(r.FilledPrice.Mul(decimal.NewFromInt(int64(r.FilledQty))))

		m.hasLastTrade = true
		m.lastTradePrice = r.FilledPrice
		m.lastTradeQty = r.FilledQty
		if r.Side == model.Buy {
			m.lastTradeSign = 1
		} else {
			m.lastTradeSign = -1
		}
		m.metrics.recordTrade(r.FilledQty)
	}
}

// qualifies applies the active QualifyPolicy (spec §4.G).
func (m *Monitor) qualifies(r report.Report) bool {
	switch m.policy {
	case EachOrderEvent:
		return true
	case EachMarketOrder:
		return r.Kind == report.MarketSubmit
	case EachTrade:
		return r.Kind == report.Execution
	default: // TopOfBookTick
		if r.Kind == report.MarketSubmit {
			return true
		}
		bids, asks := m.eng.TopLevels(m.topN)
		return !samePrices(m.prevBidPrices, topPrices(bids)) || !samePrices(m.prevAskPrices, topPrices(asks))
	}
}

// topPrices extracts just the price column of levels, the shape
// compared across report boundaries to detect a top-of-book tick.
func topPrices(levels []book.LevelView) []decimal.Decimal {
	out := make([]decimal.Decimal, len(levels))
	for i, lv := range levels {
		out[i] = lv.Price
	}
	return out
}

func samePrices(a, b []decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (m *Monitor) buildSnapshot(r report.Report) Snapshot {
	snap := Snapshot{Timestamp: r.Ts, Aggregates: m.agg}

	if bid, ok := m.eng.BestBid(); ok {
		snap.HasBid = true
		snap.BestBidPrice = bid
	}
	if ask, ok := m.eng.BestAsk(); ok {
		snap.HasAsk = true
		snap.BestAskPrice = ask
	}
	if mid, ok := m.eng.Mid(); ok {
		snap.HasMid = true
		snap.Mid = mid
		m.pushRolling(mid)
	}
	if micro, ok := m.eng.Micro(); ok {
		snap.HasMicro = true
		snap.Micro = micro
	}
	if spread, ok := m.eng.Spread(); ok {
		snap.HasSpread = true
		snap.Spread = spread
		snap.HalfSpread = spread.Div(decimal.NewFromInt(2))
	}
	if imb, ok := m.eng.Imbalance(); ok {
		snap.HasImbalance = true
		snap.Imbalance = imb
	}

	bids, asks := m.eng.TopLevels(m.topN)
	snap.BidLevels = bids
	snap.AskLevels = asks
	if len(bids) > 0 {
		snap.BestBidSize = bids[0].Size
	}
	if len(asks) > 0 {
		snap.BestAskSize = asks[0].Size
	}

	if m.hasLastTrade {
		snap.HasLastTrade = true
		snap.LastTradePrice = m.lastTradePrice
		snap.LastTradeQty = m.lastTradeQty
		snap.LastTradeSign = m.lastTradeSign
	}

	if mean, stddev, ok := rollingStats(m.rollingWindow); ok {
		snap.HasRollingStats = true
		snap.RollingMidMean = mean
		snap.RollingMidStdDev = stddev
	}

	return snap
}

func (m *Monitor) pushRolling(mid decimal.Decimal) {
	f, _ := mid.Float64()
	m.rollingWindow = append(m.rollingWindow, f)
	if len(m.rollingWindow) > m.rollingCap {
		m.rollingWindow = m.rollingWindow[len(m.rollingWindow)-m.rollingCap:]
	}
}
