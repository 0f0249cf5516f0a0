// Package engine implements the matching engine (spec §4.D): the sole
// mutator of the order book, the match loop, and the report stream.
package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNilOrder         = errors.New("engine: nil order")
	ErrDuplicateOrderID = errors.New("engine: duplicate order id")
	ErrNegativePrice    = errors.New("engine: negative price")
	ErrInvalidQuantity  = errors.New("engine: invalid quantity")
	ErrIndexMismatch    = errors.New("engine: book index inconsistent")
	ErrReentrantProcess = errors.New("engine: process is not reentrant")
)

// FatalError wraps an invariant violation (spec §7): these are
// programming bugs or corrupt inputs, never business-logic outcomes,
// and are propagated to the caller rather than turned into a FAILURE
// report.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("engine: fatal invariant violation: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(err error) *FatalError {
	return &FatalError{Err: err}
}
