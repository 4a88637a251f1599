package common

import (
	"fmt"
	"time"
)

// Trade accounts for the two parties who matched. Order state is captured as
// a snapshot at match time, the trade never holds on to the live orders.
type Trade struct {
	ID           uint64
	Timestamp    time.Time
	Price        Price    // Price of the resting order
	Size         Quantity // Always > 0
	BuyerID      string
	SellerID     string
	BidOrderID   string
	AskOrderID   string
	BidPrice     Price    // Bid limit price
	AskPrice     Price    // Ask limit price
	BidRemaining Quantity // Bid size left after this trade
	AskRemaining Quantity // Ask size left after this trade
}

// Finalize crosses a bid and an ask for as much as both can take, reducing
// both orders by the traded size. It is the only place both sides of a match
// are mutated together.
func Finalize(bid, ask *Order) (Quantity, error) {
	if bid == nil || ask == nil || bid.Side != Bid || ask.Side != Ask {
		return 0, ErrNotMatchable
	}
	if bid.IsExhausted() || ask.IsExhausted() {
		return 0, fmt.Errorf("%w: exhausted order", ErrNotMatchable)
	}
	if ask.Price > bid.Price {
		return 0, fmt.Errorf("%w: ask %d above bid %d", ErrNotMatchable, ask.Price, bid.Price)
	}

	size := min(bid.Size, ask.Size)
	bid.Reduce(size)
	ask.Reduce(size)
	return size, nil
}

// NewTrade finalizes bid against ask and records the result at price.
func NewTrade(id uint64, ts time.Time, bid, ask *Order, price Price) (Trade, error) {
	size, err := Finalize(bid, ask)
	if err != nil {
		return Trade{}, err
	}
	return Trade{
		ID:           id,
		Timestamp:    ts,
		Price:        price,
		Size:         size,
		BuyerID:      bid.Owner,
		SellerID:     ask.Owner,
		BidOrderID:   bid.UUID,
		AskOrderID:   ask.UUID,
		BidPrice:     bid.Price,
		AskPrice:     ask.Price,
		BidRemaining: bid.Size,
		AskRemaining: ask.Size,
	}, nil
}

// Value is the notional of the trade in ticks.
func (t Trade) Value() int64 {
	return int64(t.Price) * int64(t.Size)
}

// PriceImprovement is the spread between the two limits that crossed. Used
// for reporting only.
func (t Trade) PriceImprovement() Price {
	return t.BidPrice - t.AskPrice
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`ID:        %d
Timestamp: %v
Price:     %d
Size:      %d
Buyer:     %s (%s, left %d)
Seller:    %s (%s, left %d)`,
		t.ID,
		t.Timestamp.Format(time.RFC3339Nano),
		t.Price,
		t.Size,
		t.BuyerID, t.BidOrderID, t.BidRemaining,
		t.SellerID, t.AskOrderID, t.AskRemaining,
	)
}
