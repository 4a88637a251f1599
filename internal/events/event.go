// Package events describes what the order book reports to its collaborators.
// The book calls a Sink synchronously for every order arrival, removal and
// trade. Sinks are best effort: nothing they do can undo a match.
package events

import (
	"time"

	"matchbook/internal/common"
)

type Kind uint8

const (
	OrderReceived Kind = iota + 1
	OrderRemoved
	TradeCompleted
)

func (k Kind) String() string {
	switch k {
	case OrderReceived:
		return "order_received"
	case OrderRemoved:
		return "order_removed"
	case TradeCompleted:
		return "trade_completed"
	default:
		return "unknown"
	}
}

// Reason tells why an order left the book.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonCancelled
	ReasonFilled
)

func (r Reason) String() string {
	switch r {
	case ReasonCancelled:
		return "cancelled"
	case ReasonFilled:
		return "filled"
	default:
		return "none"
	}
}

// Event is a single entry of the book's audit trail. Orders are copies taken
// when the event was raised.
//
// OrderReceived and OrderRemoved carry Order. TradeCompleted carries Trade
// along with the resulting Bid and Ask state.
type Event struct {
	Seq    uint64
	Kind   Kind
	Time   time.Time
	Side   common.Side
	Reason Reason
	Order  *common.Order
	Trade  *common.Trade
	Bid    *common.Order
	Ask    *common.Order
}

func NewOrderReceived(ts time.Time, order common.Order) Event {
	return Event{
		Kind:  OrderReceived,
		Time:  ts,
		Side:  order.Side,
		Order: &order,
	}
}

func NewOrderRemoved(ts time.Time, order common.Order, reason Reason) Event {
	return Event{
		Kind:   OrderRemoved,
		Time:   ts,
		Side:   order.Side,
		Reason: reason,
		Order:  &order,
	}
}

// NewTradeCompleted records a trade. side is the side of the incoming order
// that caused it.
func NewTradeCompleted(ts time.Time, side common.Side, trade common.Trade, bid, ask common.Order) Event {
	return Event{
		Kind:  TradeCompleted,
		Time:  ts,
		Side:  side,
		Trade: &trade,
		Bid:   &bid,
		Ask:   &ask,
	}
}

// Notification is the message one stakeholder gets about a trade.
type Notification struct {
	Owner string
	Side  common.Side // Side the owner was on
	Trade common.Trade
}
