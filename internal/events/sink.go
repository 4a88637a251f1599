package events

import (
	"github.com/rs/zerolog"
)

type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(event Event)

func (f SinkFunc) Emit(event Event) {
	f(event)
}

type Nop struct{}

func (Nop) Emit(Event) {}

// Multi fans an event out to every sink in order.
type Multi []Sink

func (m Multi) Emit(event Event) {
	for _, sink := range m {
		sink.Emit(event)
	}
}

// LogSink writes the audit trail as structured log lines.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(event Event) {
	e := s.logger.Info().
		Uint64("seq", event.Seq).
		Str("kind", event.Kind.String()).
		Time("time", event.Time).
		Str("side", event.Side.String())

	switch event.Kind {
	case OrderReceived, OrderRemoved:
		if event.Order != nil {
			e = e.Str("order", event.Order.UUID).
				Int64("price", int64(event.Order.Price)).
				Uint64("size", uint64(event.Order.Size)).
				Str("owner", event.Order.Owner)
		}
		if event.Kind == OrderRemoved {
			e = e.Str("reason", event.Reason.String())
		}
	case TradeCompleted:
		if event.Trade != nil {
			e = e.Uint64("trade", event.Trade.ID).
				Int64("price", int64(event.Trade.Price)).
				Uint64("size", uint64(event.Trade.Size)).
				Str("buyer", event.Trade.BuyerID).
				Str("seller", event.Trade.SellerID).
				Uint64("bid_left", uint64(event.Trade.BidRemaining)).
				Uint64("ask_left", uint64(event.Trade.AskRemaining))
		}
	}
	e.Msg("book event")
}
