package common

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	UUID      string    // Order tracked uuid
	Side      Side      // Order side
	Price     Price     // Limiting price, in ticks
	Size      Quantity  // Remaining size, Exhausted once fully matched
	TotalSize Quantity  // Size requested at creation
	Timestamp time.Time // Time of creation of the order
	Seq       uint64    // Submission sequence, set by the book on arrival
	Owner     string    // Who owns this order, set once on submission
}

// NewOrder creates an order with a fresh identifier. Side, price and size
// are fixed from here on, only the remaining size is mutated by matching.
func NewOrder(side Side, price Price, size Quantity) (*Order, error) {
	order := &Order{
		UUID:      uuid.New().String(),
		Side:      side,
		Price:     price,
		Size:      size,
		TotalSize: size,
		Timestamp: time.Now(),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate checks the construction-time invariants of an order. Sizes are
// capped so that size times price always fits an int64 notional.
func (o *Order) Validate() error {
	if o == nil {
		return ErrInvalidOrder
	}
	if o.UUID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidOrder)
	}
	if !o.Side.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSide, int(o.Side))
	}
	if o.Price <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPrice, o.Price)
	}
	if o.Size == Exhausted {
		return ErrInvalidSize
	}
	if uint64(o.Size) > math.MaxInt64/uint64(o.Price) {
		return fmt.Errorf("%w: %d overflows at price %d", ErrInvalidSize, o.Size, o.Price)
	}
	if o.TotalSize < o.Size {
		return fmt.Errorf("%w: %d remaining of %d", ErrInvalidSize, o.Size, o.TotalSize)
	}
	return nil
}

// Reduce takes amount off the remaining size. Anything that would leave the
// order at or below zero leaves it Exhausted instead.
func (o *Order) Reduce(amount Quantity) {
	if amount >= o.Size {
		o.Size = Exhausted
		return
	}
	o.Size -= amount
}

func (o *Order) IsExhausted() bool {
	return o.Size == Exhausted
}

// SetOwner assigns the submitting owner. An order can only ever be owned once.
func (o *Order) SetOwner(owner string) error {
	if owner == "" {
		return ErrInvalidOwner
	}
	if o.Owner != "" {
		return fmt.Errorf("%w: %s by %s", ErrAlreadyOwned, o.UUID, o.Owner)
	}
	o.Owner = owner
	return nil
}

// Filled is the quantity already traded away.
func (o Order) Filled() Quantity {
	return o.TotalSize - o.Size
}

func (o Order) String() string {
	size := fmt.Sprintf("%d", o.Size)
	if o.IsExhausted() {
		size = "exhausted"
	}
	return fmt.Sprintf(
		`UUID:      %v
Side:      %v
Price:     %d
Size:      %s (Total: %d)
Timestamp: %v
Seq:       %d
Owner:     %s`,
		o.UUID,
		o.Side,
		o.Price,
		size,
		o.TotalSize,
		o.Timestamp.Format(time.RFC3339Nano),
		o.Seq,
		o.Owner,
	)
}
