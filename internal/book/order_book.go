package book

import (
	"fmt"

	"matchbook/internal/common"

	"github.com/tidwall/btree"
)

// Key locates a resting order within its side book. The submission sequence
// makes keys unique and gives strict time priority within a price.
type Key struct {
	Price common.Price
	Seq   uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%d#%d", k.Price, k.Seq)
}

// KeyOf returns the current book key of an order.
func KeyOf(order *common.Order) Key {
	return Key{Price: order.Price, Seq: order.Seq}
}

type entry struct {
	key   Key
	order *common.Order
}

// SideBook holds the resting orders of one side, ordered by Key.
//
// Key order is price ascending on both sides. Within a price, the earliest
// order is the Min on the ask side and the Max on the bid side, so Best is
// always the order with price-time priority.
type SideBook struct {
	side  common.Side
	items *btree.BTreeG[entry]
}

func New(side common.Side) *SideBook {
	less := askLess
	if side == common.Bid {
		less = bidLess
	}
	return &SideBook{
		side:  side,
		items: btree.NewBTreeG(less),
	}
}

func (book *SideBook) Side() common.Side {
	return book.side
}

// Insert adds a resting order at its current key.
func (book *SideBook) Insert(order *common.Order) error {
	if order.Side != book.side {
		return fmt.Errorf("%w: %v order in %v book", common.ErrInvalidSide, order.Side, book.side)
	}
	if order.IsExhausted() {
		return fmt.Errorf("%w: exhausted order %s", common.ErrInvalidSize, order.UUID)
	}

	key := KeyOf(order)
	if _, ok := book.items.Get(entry{key: key}); ok {
		return fmt.Errorf("%w: %v", common.ErrDuplicateKey, key)
	}
	book.items.Set(entry{key: key, order: order})
	return nil
}

// Remove deletes the order at key and returns it.
func (book *SideBook) Remove(key Key) (*common.Order, error) {
	item, ok := book.items.Delete(entry{key: key})
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrNotFound, key)
	}
	return item.order, nil
}

func (book *SideBook) Lookup(key Key) (*common.Order, error) {
	item, ok := book.items.Get(entry{key: key})
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrNotFound, key)
	}
	return item.order, nil
}

func (book *SideBook) Min() (*common.Order, error) {
	item, ok := book.items.Min()
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrEmptyBook, book.side)
	}
	return item.order, nil
}

func (book *SideBook) Max() (*common.Order, error) {
	item, ok := book.items.Max()
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrEmptyBook, book.side)
	}
	return item.order, nil
}

// Best returns the top of this side: Max for bids, Min for asks.
func (book *SideBook) Best() (*common.Order, error) {
	if book.side == common.Bid {
		return book.Max()
	}
	return book.Min()
}

func (book *SideBook) Len() int {
	return book.items.Len()
}

func (book *SideBook) IsEmpty() bool {
	return book.items.Len() == 0
}

// Scan walks resting orders from best to worst until fn returns false.
func (book *SideBook) Scan(fn func(order *common.Order) bool) {
	iter := func(item entry) bool {
		return fn(item.order)
	}
	if book.side == common.Bid {
		book.items.Reverse(iter)
		return
	}
	book.items.Scan(iter)
}

// Orders returns the resting orders from best to worst.
func (book *SideBook) Orders() []*common.Order {
	orders := make([]*common.Order, 0, book.items.Len())
	book.Scan(func(order *common.Order) bool {
		orders = append(orders, order)
		return true
	})
	return orders
}
