package model

import "errors"

var (
	ErrLiveOrderZeroQuantity        = errors.New("model: live order has zero quantity")
	ErrInactiveOrderNonZeroQuantity = errors.New("model: inactive order has non-zero quantity")
	ErrFilledOrderNonZeroQuantity   = errors.New("model: filled order has non-zero quantity")
)
