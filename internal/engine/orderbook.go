package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"matchbook/internal/book"
	"matchbook/internal/common"
	"matchbook/internal/events"

	"github.com/rs/zerolog/log"
)

// OrderBook is a single instrument limit order book. Incoming orders rest on
// their own side and are then crossed against the best opposite order until
// they are exhausted or the prices no longer cross.
//
// Every public method holds one lock for its whole duration: a match mutates
// both orders, both books, the trade log and the id index as one unit.
type OrderBook struct {
	mu sync.Mutex
	p  Params

	bids *book.SideBook
	asks *book.SideBook

	registry *Registry
	index    map[string]book.Key // order id -> key of the resting order
	trades   []common.Trade      // append only

	orderSeq uint64
	tradeSeq uint64
	eventSeq uint64
}

func NewOrderBook(p Params) *OrderBook {
	return &OrderBook{
		p:        p.withDefaults(),
		bids:     book.New(common.Bid),
		asks:     book.New(common.Ask),
		registry: NewRegistry(),
		index:    make(map[string]book.Key),
	}
}

// AddOrder submits order on behalf of owner and matches it. It returns the
// trades the order took part in, best price first.
//
// The order is owned by the book from here on: its Seq, Owner and Size are
// written by the book and must not be touched by the caller.
func (ob *OrderBook) AddOrder(order *common.Order, owner string) ([]common.Trade, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if err := order.Validate(); err != nil {
		return nil, err
	}
	if owner == "" {
		return nil, common.ErrInvalidOwner
	}
	if order.Owner != "" {
		return nil, fmt.Errorf("%w: %s by %s", common.ErrAlreadyOwned, order.UUID, order.Owner)
	}
	if _, ok := ob.index[order.UUID]; ok {
		return nil, fmt.Errorf("%w: %s already resting", common.ErrAlreadyOwned, order.UUID)
	}

	// Nothing is recorded until the insert went through, so a failure here
	// leaves the book as it was.
	order.Seq = ob.orderSeq + 1
	if err := ob.side(order.Side).Insert(order); err != nil {
		order.Seq = 0
		return nil, fmt.Errorf("inserting order %s: %w", order.UUID, err)
	}
	ob.orderSeq++
	if err := order.SetOwner(owner); err != nil {
		// Unreachable, ownership was checked above.
		return nil, err
	}
	ob.registry.Record(owner, order.UUID)
	ob.index[order.UUID] = book.KeyOf(order)

	log.Debug().
		Str("order", order.UUID).
		Str("side", order.Side.String()).
		Int64("price", int64(order.Price)).
		Uint64("size", uint64(order.Size)).
		Str("owner", owner).
		Msg("order received")
	ob.emit(events.NewOrderReceived(ob.p.Clock(), *order))

	return ob.match(order), nil
}

// match crosses incoming against the opposite side until it is exhausted or
// nothing crosses any more.
func (ob *OrderBook) match(incoming *common.Order) []common.Trade {
	tryMatch := ob.tryMatchBid
	if incoming.Side == common.Ask {
		tryMatch = ob.tryMatchAsk
	}

	var trades []common.Trade
	for !incoming.IsExhausted() {
		trade, ok := tryMatch(incoming)
		if !ok {
			break
		}
		trades = append(trades, trade)
	}

	if incoming.IsExhausted() {
		ob.retire(incoming, events.ReasonFilled)
	}
	return trades
}

// tryMatchBid trades bid against the lowest ask, if that ask is at or below
// the bid's limit. The book is price ordered, so when the lowest ask does not
// cross no other ask will.
func (ob *OrderBook) tryMatchBid(bid *common.Order) (common.Trade, bool) {
	ask, err := ob.asks.Best()
	if err != nil || ask.Price > bid.Price {
		return common.Trade{}, false
	}
	return ob.cross(bid, ask, ask)
}

// tryMatchAsk is the mirror of tryMatchBid against the highest bid.
func (ob *OrderBook) tryMatchAsk(ask *common.Order) (common.Trade, bool) {
	bid, err := ob.bids.Best()
	if err != nil || bid.Price < ask.Price {
		return common.Trade{}, false
	}
	return ob.cross(bid, ask, bid)
}

// cross commits one trade between bid and ask at the price of the resting
// order. Each call is complete on its own: the trade is logged and any
// exhausted resting order is gone from its book before it returns.
func (ob *OrderBook) cross(bid, ask, resting *common.Order) (common.Trade, bool) {
	incomingSide := resting.Side.Opposite()

	now := ob.p.Clock()
	trade, err := common.NewTrade(ob.tradeSeq+1, now, bid, ask, resting.Price)
	if err != nil {
		// Only possible if an exhausted order was left resting.
		log.Error().
			Err(err).
			Str("bid", bid.UUID).
			Str("ask", ask.UUID).
			Msg("unable to cross orders")
		return common.Trade{}, false
	}
	ob.tradeSeq++
	ob.trades = append(ob.trades, trade)

	ob.emit(events.NewTradeCompleted(now, incomingSide, trade, *bid, *ask))
	ob.notify(trade)

	if resting.IsExhausted() {
		ob.retire(resting, events.ReasonFilled)
	}
	return trade, true
}

// RemoveOrder cancels a resting order. Requests from anyone but the owner
// are ignored without error.
func (ob *OrderBook) RemoveOrder(orderID, owner string) error {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	key, ok := ob.index[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrNotFound, orderID)
	}

	for _, side := range []*book.SideBook{ob.bids, ob.asks} {
		order, err := side.Lookup(key)
		if err != nil || order.UUID != orderID {
			continue
		}
		if order.Owner != owner {
			log.Warn().
				Str("order", orderID).
				Str("requester", owner).
				Msg("ignoring cancel from non-owner")
			return nil
		}
		ob.retire(order, events.ReasonCancelled)
		return nil
	}
	return fmt.Errorf("%w: %s", common.ErrNotFound, orderID)
}

// retire takes order off its book and out of the index.
func (ob *OrderBook) retire(order *common.Order, reason events.Reason) {
	key := book.KeyOf(order)
	if _, err := ob.side(order.Side).Remove(key); err != nil {
		log.Error().Err(err).Str("order", order.UUID).Msg("order missing from its book")
	}
	delete(ob.index, order.UUID)
	ob.emit(events.NewOrderRemoved(ob.p.Clock(), *order, reason))
}

func (ob *OrderBook) emit(event events.Event) {
	ob.eventSeq++
	event.Seq = ob.eventSeq
	ob.p.Sink.Emit(event)
}

func (ob *OrderBook) notify(trade common.Trade) {
	owners := ob.registry.Stakeholders(
		[]string{trade.BuyerID, trade.SellerID},
		trade.BidOrderID, trade.AskOrderID,
	)
	if len(owners) == 0 {
		return
	}
	ob.p.Notifier.Notify(trade, owners)
}

func (ob *OrderBook) side(side common.Side) *book.SideBook {
	if side == common.Bid {
		return ob.bids
	}
	return ob.asks
}

// ---- Queries ----

// BestBid returns a copy of the highest resting bid.
func (ob *OrderBook) BestBid() (common.Order, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return best(ob.bids)
}

// BestAsk returns a copy of the lowest resting ask.
func (ob *OrderBook) BestAsk() (common.Order, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return best(ob.asks)
}

// ShowTop returns the highest bid and the lowest ask. A side with no resting
// orders contributes an ErrEmptyBook to err and a zero Order, the other side
// is still filled in.
func (ob *OrderBook) ShowTop() (bid, ask common.Order, err error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	bid, bidErr := best(ob.bids)
	ask, askErr := best(ob.asks)
	return bid, ask, errors.Join(bidErr, askErr)
}

func best(side *book.SideBook) (common.Order, error) {
	order, err := side.Best()
	if err != nil {
		return common.Order{}, err
	}
	return *order, nil
}

// ShowTrades returns every trade so far, oldest first.
func (ob *OrderBook) ShowTrades() []common.Trade {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	trades := make([]common.Trade, len(ob.trades))
	copy(trades, ob.trades)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
	return trades
}

// Len is the number of resting orders on side.
func (ob *OrderBook) Len(side common.Side) int {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.side(side).Len()
}

// OrdersOf returns the ids of every order owner has submitted, resting or not.
func (ob *OrderBook) OrdersOf(owner string) []string {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.registry.Orders(owner)
}

// Depth is a copy of both books, best order first on each side.
type Depth struct {
	Bids []common.Order
	Asks []common.Order
}

func (ob *OrderBook) Depth() Depth {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.depth()
}

func (ob *OrderBook) depth() Depth {
	return Depth{
		Bids: copyOrders(ob.bids.Orders()),
		Asks: copyOrders(ob.asks.Orders()),
	}
}

func copyOrders(orders []*common.Order) []common.Order {
	out := make([]common.Order, len(orders))
	for i, order := range orders {
		out[i] = *order
	}
	return out
}
