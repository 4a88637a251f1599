// Package notify delivers trade notifications to the owners with a stake in
// each trade. Delivery is best effort and never feeds back into matching.
package notify

import (
	"context"
	"errors"
	"sync"

	"matchbook/internal/common"
	"matchbook/internal/events"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

var (
	ErrNotStarted = errors.New("dispatcher not started")
	ErrStarted    = errors.New("dispatcher already started")
)

// Deliverer sends a single notification to its owner.
type Deliverer interface {
	Deliver(ctx context.Context, n events.Notification) error
}

// LogNotifier logs every notification instead of sending it.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(trade common.Trade, owners []string) {
	for _, notification := range Fanout(trade, owners) {
		_ = n.Deliver(context.Background(), notification)
	}
}

func (n *LogNotifier) Deliver(_ context.Context, notification events.Notification) error {
	n.logger.Info().
		Str("owner", notification.Owner).
		Str("side", notification.Side.String()).
		Uint64("trade", notification.Trade.ID).
		Int64("price", int64(notification.Trade.Price)).
		Uint64("size", uint64(notification.Trade.Size)).
		Msg("trade notification")
	return nil
}

// Fanout builds one notification per owner. An owner on both sides of a
// trade is told as the buyer.
func Fanout(trade common.Trade, owners []string) []events.Notification {
	out := make([]events.Notification, 0, len(owners))
	for _, owner := range owners {
		side := common.Ask
		if owner == trade.BuyerID {
			side = common.Bid
		}
		out = append(out, events.Notification{Owner: owner, Side: side, Trade: trade})
	}
	return out
}

type DispatcherParams struct {
	// Workers is the number of concurrent deliveries.
	//
	// Defaults to 4.
	Workers int
	// QueueSize bounds the notifications waiting for a worker. Notify drops
	// anything that does not fit rather than stall the book.
	//
	// Defaults to 1024.
	QueueSize int
}

// Dispatcher hands notifications to a pool of workers. Notify only ever
// enqueues, so it is safe to call while the book holds its lock.
type Dispatcher struct {
	p         DispatcherParams
	deliverer Deliverer

	mu     sync.Mutex
	closed bool
	tasks  chan events.Notification
	t      *tomb.Tomb
	ctx    context.Context
}

func NewDispatcher(p DispatcherParams, deliverer Deliverer) *Dispatcher {
	if p.Workers <= 0 {
		p.Workers = 4
	}
	if p.QueueSize <= 0 {
		p.QueueSize = 1024
	}
	return &Dispatcher{
		p:         p,
		deliverer: deliverer,
		tasks:     make(chan events.Notification, p.QueueSize),
	}
}

// Start launches the workers. They stop once ctx is done or Close was called
// and the queue is drained.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.t != nil {
		return ErrStarted
	}
	d.t, d.ctx = tomb.WithContext(ctx)
	for id := 0; id < d.p.Workers; id++ {
		d.t.Go(func() error {
			return d.worker(id)
		})
	}
	return nil
}

func (d *Dispatcher) Notify(trade common.Trade, owners []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		log.Warn().Uint64("trade", trade.ID).Msg("dispatcher closed, dropping notifications")
		return
	}
	for _, n := range Fanout(trade, owners) {
		select {
		case d.tasks <- n:
		default:
			log.Warn().
				Str("owner", n.Owner).
				Uint64("trade", trade.ID).
				Msg("notification queue full, dropping")
		}
	}
}

// Close stops intake and waits for queued notifications to be delivered.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.t == nil {
		d.mu.Unlock()
		return ErrNotStarted
	}
	if !d.closed {
		d.closed = true
		close(d.tasks)
	}
	t := d.t
	d.mu.Unlock()

	// A cancelled parent context is how the process asks us to stop.
	if err := t.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// worker delivers notifications until the queue is closed and empty. A failed
// delivery is logged and dropped, it never stops the worker.
func (d *Dispatcher) worker(id int) error {
	for {
		select {
		case <-d.t.Dying():
			return nil
		case n, ok := <-d.tasks:
			if !ok {
				return nil
			}
			if err := d.deliverer.Deliver(d.ctx, n); err != nil {
				log.Error().
					Err(err).
					Int("worker", id).
					Str("owner", n.Owner).
					Uint64("trade", n.Trade.ID).
					Msg("notification delivery failed")
			}
		}
	}
}
