package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"matchbook/internal/common"
	"matchbook/internal/engine"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

const helpText = `commands:
  bid PRICE SIZE OWNER   place a buy order
  ask PRICE SIZE OWNER   place a sell order
  cancel ID OWNER        cancel a resting order
  top                    best bid and ask
  trades                 trades so far, oldest first
  book                   both sides of the book
  help                   this text
  quit                   exit`

// shell runs text commands against a book. It is the only caller of the book
// in this binary, the book itself knows nothing about text.
type shell struct {
	book *engine.OrderBook
	out  io.Writer

	mu      sync.Mutex // held for the duration of each command
	stopped bool
}

func newShell(book *engine.OrderBook, out io.Writer) *shell {
	return &shell{book: book, out: out}
}

// run executes one command per line of in until EOF, quit or ctx is done.
func run(ctx context.Context, in io.Reader, out io.Writer, book *engine.OrderBook) error {
	return newShell(book, out).run(ctx, in)
}

// run executes one command per line of in until EOF, quit, stop or ctx is
// done. Bad commands are reported on out and do not stop the loop.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quit, err := s.exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// stop waits for the command in flight, if any, and refuses every later one.
// Once it returns the book is no longer touched by the shell.
func (s *shell) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *shell) exec(line string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return true, nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}

	switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
	case "bid":
		return false, s.place(common.Bid, args)
	case "ask":
		return false, s.place(common.Ask, args)
	case "cancel":
		return false, s.cancel(args)
	case "top":
		s.top()
	case "trades":
		s.trades()
	case "book":
		fmt.Fprint(s.out, s.book.ShowOrderBook())
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return false, nil
}

func (s *shell) place(side common.Side, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: %v PRICE SIZE OWNER", ErrUsage, side)
	}
	price, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("parsing price: %w", err)
	}
	size, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parsing size: %w", err)
	}

	order, err := common.NewOrder(side, common.Price(price), common.Quantity(size))
	if err != nil {
		return err
	}
	trades, err := s.book.AddOrder(order, args[2])
	if err != nil {
		return err
	}

	state := "resting"
	if order.IsExhausted() {
		state = "filled"
	}
	fmt.Fprintf(s.out, "order %s %s (%d traded)\n", order.UUID, state, order.Filled())
	for _, trade := range trades {
		printTrade(s.out, trade)
	}
	return nil
}

func (s *shell) cancel(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: cancel ID OWNER", ErrUsage)
	}
	if err := s.book.RemoveOrder(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "ok")
	return nil
}

func (s *shell) top() {
	bid, ask, _ := s.book.ShowTop()
	fmt.Fprintf(s.out, "bid: %s  ask: %s\n", quote(bid), quote(ask))
}

func (s *shell) trades() {
	trades := s.book.ShowTrades()
	if len(trades) == 0 {
		fmt.Fprintln(s.out, "no trades")
		return
	}
	for _, trade := range trades {
		printTrade(s.out, trade)
	}
}

func quote(order common.Order) string {
	if order.UUID == "" {
		return "-"
	}
	return fmt.Sprintf("%dx%d", order.Size, order.Price)
}

func printTrade(w io.Writer, trade common.Trade) {
	fmt.Fprintf(w, "trade #%d %s %dx%d buyer=%s seller=%s\n",
		trade.ID,
		trade.Timestamp.Format("15:04:05.000000"),
		trade.Size,
		trade.Price,
		trade.BuyerID,
		trade.SellerID,
	)
}
