package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwnedOrder(t *testing.T, side Side, price Price, size Quantity, owner string) *Order {
	t.Helper()
	order, err := NewOrder(side, price, size)
	require.NoError(t, err)
	require.NoError(t, order.SetOwner(owner))
	return order
}

func TestFinalize(t *testing.T) {
	bid := newOwnedOrder(t, Bid, 100, 10, "buyer")
	ask := newOwnedOrder(t, Ask, 99, 12, "seller")

	size, err := Finalize(bid, ask)
	require.NoError(t, err)
	assert.Equal(t, Quantity(10), size)
	assert.True(t, bid.IsExhausted())
	assert.Equal(t, Quantity(2), ask.Size)
}

func TestFinalize_NotMatchable(t *testing.T) {
	bid := newOwnedOrder(t, Bid, 98, 10, "buyer")
	ask := newOwnedOrder(t, Ask, 99, 12, "seller")

	_, err := Finalize(bid, ask)
	assert.ErrorIs(t, err, ErrNotMatchable)
	assert.Equal(t, Quantity(10), bid.Size, "orders must not change on a failed finalize")
	assert.Equal(t, Quantity(12), ask.Size)

	_, err = Finalize(ask, bid)
	assert.ErrorIs(t, err, ErrNotMatchable)

	bid.Price = 100
	bid.Reduce(10)
	_, err = Finalize(bid, ask)
	assert.ErrorIs(t, err, ErrNotMatchable, "exhausted orders never trade")
}

func TestNewTrade(t *testing.T) {
	bid := newOwnedOrder(t, Bid, 100, 10, "buyer")
	ask := newOwnedOrder(t, Ask, 99, 12, "seller")
	ts := time.Unix(1700000000, 0)

	trade, err := NewTrade(1, ts, bid, ask, bid.Price)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), trade.ID)
	assert.Equal(t, ts, trade.Timestamp)
	assert.Equal(t, Price(100), trade.Price)
	assert.Equal(t, Quantity(10), trade.Size)
	assert.Equal(t, "buyer", trade.BuyerID)
	assert.Equal(t, "seller", trade.SellerID)
	assert.Equal(t, bid.UUID, trade.BidOrderID)
	assert.Equal(t, ask.UUID, trade.AskOrderID)
	assert.Equal(t, Exhausted, trade.BidRemaining)
	assert.Equal(t, Quantity(2), trade.AskRemaining)
	assert.Equal(t, int64(1000), trade.Value())
	assert.Equal(t, Price(1), trade.PriceImprovement())
}
