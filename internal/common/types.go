package common

import "errors"

var (
	ErrInvalidOrder = errors.New("invalid order")
	ErrInvalidSide  = errors.New("invalid side")
	ErrInvalidPrice = errors.New("invalid price")
	ErrInvalidSize  = errors.New("invalid size")
	ErrInvalidOwner = errors.New("invalid owner")
	ErrAlreadyOwned = errors.New("order already owned")
	ErrNotMatchable = errors.New("orders are not matchable")
	ErrEmptyBook    = errors.New("empty book")
	ErrNotFound     = errors.New("order not found")
	ErrDuplicateKey = errors.New("duplicate book key")
)

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

// Price is a limit price in integer ticks. Floats are never used so that
// comparisons between levels are exact.
type Price int64

// Quantity is an order or trade size. The zero value is the Exhausted
// sentinel and is never a valid live size.
type Quantity uint64

const Exhausted Quantity = 0
