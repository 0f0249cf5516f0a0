package model

import "github.com/shopspring/decimal"

// SnapToTick rounds price to the nearest multiple of tick. A
// non-positive tick is treated as "no snapping" and returns price
// unchanged, since a tick of zero has no meaningful grid.
func SnapToTick(price, tick decimal.Decimal) decimal.Decimal {
	if tick.Sign() <= 0 {
		return price
	}
	units := price.Div(tick).Round(0)
	return units.Mul(tick)
}

// IntPrice returns round(price / tick) as the exact integer used for
// wire formats and equality comparisons (spec §3, §6.3).
func IntPrice(price, tick decimal.Decimal) int64 {
	if tick.Sign() <= 0 {
		return price.Round(0).IntPart()
	}
	return price.Div(tick).Round(0).IntPart()
}

// LobsterIntPrice returns round(price / tick * 10000), the LOBSTER
// message-file integer price convention (spec §6.3).
func LobsterIntPrice(price, tick decimal.Decimal) int64 {
	if tick.Sign() <= 0 {
		return 0
	}
	scaled := price.Div(tick).Mul(decimal.NewFromInt(10000))
	return scaled.Round(0).IntPart()
}
