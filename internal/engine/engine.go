package engine

import (
	"time"

	"matchbook/internal/common"
	"matchbook/internal/events"
)

// Notifier delivers a trade to every owner with a stake in it. The book calls
// it synchronously after each match and ignores the outcome.
type Notifier interface {
	Notify(trade common.Trade, owners []string)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(trade common.Trade, owners []string)

func (f NotifierFunc) Notify(trade common.Trade, owners []string) {
	f(trade, owners)
}

type nopNotifier struct{}

func (nopNotifier) Notify(common.Trade, []string) {}

type Params struct {
	// Clock stamps events and trades.
	//
	// Defaults to time.Now.
	Clock func() time.Time
	// Sink receives the audit trail.
	//
	// Defaults to events.Nop.
	Sink events.Sink
	// Notifier is told about trades. Leaving it nil disables notifications,
	// matching is unaffected.
	Notifier Notifier
}

func (p Params) withDefaults() Params {
	if p.Clock == nil {
		p.Clock = time.Now
	}
	if p.Sink == nil {
		p.Sink = events.Nop{}
	}
	if p.Notifier == nil {
		p.Notifier = nopNotifier{}
	}
	return p
}
