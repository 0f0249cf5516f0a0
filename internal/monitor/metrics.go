package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/stat"
)

// Metrics exposes the monitor's observables as Prometheus gauges and
// counters, grounded on abdoElHodaky-tradSys's exchange metrics
// wiring (SPEC_FULL.md §4.G). Each Metrics owns a private registry so
// multiple Monitor instances (e.g. under test) never collide on the
// global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	bestBid   prometheus.Gauge
	bestAsk   prometheus.Gauge
	mid       prometheus.Gauge
	spread    prometheus.Gauge
	imbalance prometheus.Gauge
	trades    prometheus.Counter
	volume    prometheus.Counter
}

// NewMetrics constructs and registers the monitor's metric family on
// a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		bestBid:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "matchcore_best_bid_price"}),
		bestAsk:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "matchcore_best_ask_price"}),
		mid:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "matchcore_mid_price"}),
		spread:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "matchcore_spread"}),
		imbalance: prometheus.NewGauge(prometheus.GaugeOpts{Name: "matchcore_order_imbalance"}),
		trades:    prometheus.NewCounter(prometheus.CounterOpts{Name: "matchcore_trades_total"}),
		volume:    prometheus.NewCounter(prometheus.CounterOpts{Name: "matchcore_trade_volume_total"}),
	}
	reg.MustRegister(m.bestBid, m.bestAsk, m.mid, m.spread, m.imbalance, m.trades, m.volume)
	return m
}

func (m *Metrics) observe(s Snapshot) {
	if m == nil {
		return
	}
	if s.HasBid {
		f, _ := s.BestBidPrice.Float64()
		m.bestBid.Set(f)
	}
	if s.HasAsk {
		f, _ := s.BestAskPrice.Float64()
		m.bestAsk.Set(f)
	}
	if s.HasMid {
		f, _ := s.Mid.Float64()
		m.mid.Set(f)
	}
	if s.HasSpread {
		f, _ := s.Spread.Float64()
		m.spread.Set(f)
	}
	if s.HasImbalance {
		f, _ := s.Imbalance.Float64()
		m.imbalance.Set(f)
	}
}

func (m *Metrics) recordTrade(qty uint64) {
	if m == nil {
		return
	}
	m.trades.Inc()
	m.volume.Add(float64(qty))
}

// rollingStats computes the mean and standard deviation of a bounded
// window of recent mid-price samples via gonum/stat (SPEC_FULL.md §4.G).
func rollingStats(samples []float64) (mean, stddev float64, ok bool) {
	if len(samples) == 0 {
		return 0, 0, false
	}
	mean = stat.Mean(samples, nil)
	if len(samples) < 2 {
		return mean, 0, true
	}
	stddev = stat.StdDev(samples, nil)
	return mean, stddev, true
}
