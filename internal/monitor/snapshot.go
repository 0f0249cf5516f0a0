package monitor

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/book"
)

// QualifyPolicy selects which reports trigger a new snapshot (spec §4.G).
type QualifyPolicy int

const (
	// TopOfBookTick is the default: sample only when the top-N level
	// prices on either side differ from those cached after the
	// previous report; MARKET_SUBMIT reports always qualify. A size
	// change at an unchanged top-N price does not qualify.
	TopOfBookTick QualifyPolicy = iota
	// EachOrderEvent samples every report.
	EachOrderEvent
	// EachMarketOrder samples only on MARKET_SUBMIT reports.
	EachMarketOrder
	// EachTrade samples on every EXECUTION report; the taker and maker
	// reports of one trade each produce a sample.
	EachTrade
)

// Aggregates are cumulative counters since engine start (spec §3).
// Copied by value wherever stored, never aliased (spec §9 "Mutable
// running aggregates").
type Aggregates struct {
	NewLimitCount         uint64
	NewMarketCount        uint64
	CancelCount           uint64
	ModifyPriceCount      uint64
	ModifyQuantityCount   uint64
	TradeCount            uint64
	CumulativeTradeVolume uint64
	CumulativeNotional    decimal.Decimal
}

// Snapshot is a single OrderBookStatisticsByTimestamp sample (spec §4.G).
type Snapshot struct {
	Timestamp uint64

	HasBid       bool
	BestBidPrice decimal.Decimal
	BestBidSize  uint64
	HasAsk       bool
	BestAskPrice decimal.Decimal
	BestAskSize  uint64

	HasMid  bool
	Mid     decimal.Decimal
	HasMicro bool
	Micro   decimal.Decimal

	HasSpread  bool
	Spread     decimal.Decimal
	HalfSpread decimal.Decimal

	HasImbalance bool
	Imbalance    decimal.Decimal

	HasLastTrade   bool
	LastTradePrice decimal.Decimal
	LastTradeQty   uint64
	LastTradeSign  int // +1 buy-initiated, -1 sell-initiated

	BidLevels []book.LevelView
	AskLevels []book.LevelView

	Aggregates Aggregates

	// RollingMidMean/RollingMidStdDev are supplements beyond spec §4.G
	// (SPEC_FULL.md §4.G), computed via gonum/stat over a bounded
	// window of recent mid-price samples.
	HasRollingStats    bool
	RollingMidMean     float64
	RollingMidStdDev   float64
}
