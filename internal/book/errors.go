package book

import "errors"

var (
	ErrOrderNotFound        = errors.New("book: order not found")
	ErrDuplicateOrderID     = errors.New("book: duplicate order id")
	ErrEmptyLevel           = errors.New("book: price level is empty")
	ErrQuantityExceedsOrder = errors.New("book: quantity delta exceeds order quantity")
	ErrEmptyQueue           = errors.New("book: queue is empty")
	ErrIndexMismatch        = errors.New("book: index disagrees with queue position")
)
