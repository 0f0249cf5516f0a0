package model

import "github.com/shopspring/decimal"

// Trade records a single match between a resting maker order and an
// incoming taker order. Price is always the resting maker's price
// (spec §3).
type Trade struct {
	ID              uint64
	Timestamp       uint64
	BuyOrderID      uint64
	SellOrderID     uint64
	Quantity        uint64
	Price           decimal.Decimal
	IsBuyLimit      bool
	IsSellLimit     bool
	IsBuyInitiated  bool
}
