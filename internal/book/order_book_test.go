package book

import (
	"testing"

	"matchbook/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Setup & Helpers --------------------------------------------------------

var testSeq uint64

func newTestOrder(t *testing.T, side common.Side, price common.Price, size common.Quantity) *common.Order {
	t.Helper()
	order, err := common.NewOrder(side, price, size)
	require.NoError(t, err)
	testSeq++
	order.Seq = testSeq
	return order
}

func insertTestOrders(t *testing.T, book *SideBook, price common.Price, sizes ...common.Quantity) []*common.Order {
	t.Helper()
	orders := make([]*common.Order, 0, len(sizes))
	for _, size := range sizes {
		order := newTestOrder(t, book.Side(), price, size)
		require.NoError(t, book.Insert(order))
		orders = append(orders, order)
	}
	return orders
}

func prices(orders []*common.Order) []common.Price {
	out := make([]common.Price, len(orders))
	for i, order := range orders {
		out[i] = order.Price
	}
	return out
}

// --- Tests ------------------------------------------------------------------

func TestSideBook_Empty(t *testing.T) {
	book := New(common.Ask)

	assert.True(t, book.IsEmpty())
	assert.Equal(t, 0, book.Len())

	_, err := book.Min()
	assert.ErrorIs(t, err, common.ErrEmptyBook)
	_, err = book.Max()
	assert.ErrorIs(t, err, common.ErrEmptyBook)
	_, err = book.Best()
	assert.ErrorIs(t, err, common.ErrEmptyBook)
}

func TestSideBook_BidPriority(t *testing.T) {
	book := New(common.Bid)

	insertTestOrders(t, book, 100, 10)
	insertTestOrders(t, book, 70, 15)
	insertTestOrders(t, book, 99, 7)
	insertTestOrders(t, book, 101, 9)

	assert.Equal(t, 4, book.Len())

	best, err := book.Best()
	require.NoError(t, err)
	assert.Equal(t, common.Price(101), best.Price)
	assert.Equal(t, common.Quantity(9), best.Size)

	worst, err := book.Min()
	require.NoError(t, err)
	assert.Equal(t, common.Price(70), worst.Price)

	assert.Equal(t, []common.Price{101, 100, 99, 70}, prices(book.Orders()), "Bids should be sorted High -> Low")
}

func TestSideBook_AskPriority(t *testing.T) {
	book := New(common.Ask)

	insertTestOrders(t, book, 101, 20)
	insertTestOrders(t, book, 100, 100)
	insertTestOrders(t, book, 102, 5)

	best, err := book.Best()
	require.NoError(t, err)
	assert.Equal(t, common.Price(100), best.Price)

	assert.Equal(t, []common.Price{100, 101, 102}, prices(book.Orders()), "Asks should be sorted Low -> High")
}

func TestSideBook_TimePriorityWithinPrice(t *testing.T) {
	for _, side := range []common.Side{common.Bid, common.Ask} {
		book := New(side)

		// Equal price and equal size used to collide on a (price, size) key.
		orders := insertTestOrders(t, book, 99, 10, 10, 10)
		require.Equal(t, 3, book.Len())

		best, err := book.Best()
		require.NoError(t, err)
		assert.Equal(t, orders[0].UUID, best.UUID, "%v: earliest order should be first", side)

		got := book.Orders()
		for i := range orders {
			assert.Equal(t, orders[i].UUID, got[i].UUID)
		}
	}
}

func TestSideBook_InsertRejects(t *testing.T) {
	book := New(common.Bid)

	ask := newTestOrder(t, common.Ask, 100, 1)
	assert.ErrorIs(t, book.Insert(ask), common.ErrInvalidSide)

	bid := newTestOrder(t, common.Bid, 100, 1)
	require.NoError(t, book.Insert(bid))

	dup := newTestOrder(t, common.Bid, 100, 5)
	dup.Seq = bid.Seq
	assert.ErrorIs(t, book.Insert(dup), common.ErrDuplicateKey)

	exhausted := newTestOrder(t, common.Bid, 100, 1)
	exhausted.Reduce(1)
	assert.ErrorIs(t, book.Insert(exhausted), common.ErrInvalidSize)

	assert.Equal(t, 1, book.Len())
	got, err := book.Lookup(KeyOf(bid))
	require.NoError(t, err)
	assert.Same(t, bid, got, "a rejected insert must not overwrite")
}

func TestSideBook_RemoveLookup(t *testing.T) {
	book := New(common.Ask)
	orders := insertTestOrders(t, book, 50, 1, 2)

	got, err := book.Lookup(KeyOf(orders[1]))
	require.NoError(t, err)
	assert.Same(t, orders[1], got)

	removed, err := book.Remove(KeyOf(orders[0]))
	require.NoError(t, err)
	assert.Same(t, orders[0], removed)
	assert.Equal(t, 1, book.Len())

	_, err = book.Remove(KeyOf(orders[0]))
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = book.Lookup(KeyOf(orders[0]))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSideBook_ScanStops(t *testing.T) {
	book := New(common.Ask)
	insertTestOrders(t, book, 10, 1)
	insertTestOrders(t, book, 11, 1)
	insertTestOrders(t, book, 12, 1)

	var seen []common.Price
	book.Scan(func(order *common.Order) bool {
		seen = append(seen, order.Price)
		return len(seen) < 2
	})
	assert.Equal(t, []common.Price{10, 11}, seen)
}
