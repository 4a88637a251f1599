package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"matchbook/internal/common"
	"matchbook/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, book *engine.OrderBook, script string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), strings.NewReader(script), &out, book))
	return out.String()
}

func TestRun_Scenario(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})

	out := runScript(t, book, `
# four resting bids
bid 100 10 alice
bid 70 15 bob
bid 99 7 carol
bid 101 9 dave
ask 99 26 erin
top
trades
`)

	assert.Contains(t, out, "filled (26 traded)")
	assert.Equal(t, 6, strings.Count(out, "seller=erin"), "trades are printed on placement and again by trades")
	assert.Contains(t, out, "9x101 buyer=dave seller=erin")
	assert.Contains(t, out, "10x100 buyer=alice seller=erin")
	assert.Contains(t, out, "7x99 buyer=carol seller=erin")
	assert.Contains(t, out, "bid: 15x70  ask: -")

	assert.Equal(t, 1, book.Len(common.Bid))
	assert.Equal(t, 0, book.Len(common.Ask))
}

func TestRun_Cancel(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})
	order, err := common.NewOrder(common.Ask, 105, 3)
	require.NoError(t, err)
	_, err = book.AddOrder(order, "alice")
	require.NoError(t, err)

	out := runScript(t, book, "cancel "+order.UUID+" mallory\n")
	assert.Equal(t, "ok\n", out)
	assert.Equal(t, 1, book.Len(common.Ask))

	out = runScript(t, book, "cancel "+order.UUID+" alice\ncancel "+order.UUID+" alice\n")
	assert.True(t, strings.HasPrefix(out, "ok\n"))
	assert.Contains(t, out, "error: order not found")
	assert.Equal(t, 0, book.Len(common.Ask))
}

func TestRun_Errors(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})

	out := runScript(t, book, `
sell 1 2 x
bid 100
bid abc 1 x
bid 100 0 x
bid -1 5 x
cancel
trades
`)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "unknown command")
	assert.Contains(t, lines[1], "usage")
	assert.Contains(t, lines[2], "parsing price")
	assert.Contains(t, lines[3], "invalid size")
	assert.Contains(t, lines[4], "invalid price")
	assert.Contains(t, lines[5], "usage")
	assert.Equal(t, "no trades", lines[6])
}

func TestRun_Quit(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})

	runScript(t, book, "bid 100 1 alice\nquit\nbid 100 1 alice\n")
	assert.Equal(t, 1, book.Len(common.Bid))
}

func TestRun_Book(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})

	out := runScript(t, book, "bid 100 1 alice\nask 101 2 bob\nbook\n")
	assert.Contains(t, out, "BID")
	assert.Regexp(t, `alice\s+1\s+100\s+\|\s+101\s+2\s+bob`, out)
}

func TestRun_ContextDone(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, strings.NewReader("bid 100 1 alice\n"), &out, book)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, book.Len(common.Bid))
}

func TestShell_Stop(t *testing.T) {
	book := engine.NewOrderBook(engine.Params{})
	var out bytes.Buffer
	sh := newShell(book, &out)

	require.NoError(t, sh.run(context.Background(), strings.NewReader("bid 100 1 alice\n")))
	sh.stop()

	// Nothing reaches the book once stopped, the loop ends quietly.
	require.NoError(t, sh.run(context.Background(), strings.NewReader("bid 100 1 alice\nask 100 1 bob\n")))
	assert.Equal(t, 1, book.Len(common.Bid))
	assert.Equal(t, 0, book.Len(common.Ask))
	assert.Equal(t, 1, strings.Count(out.String(), "order "))
}
