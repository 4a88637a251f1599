package engine

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"matchbook/internal/common"
)

// ShowOrderBook renders both sides next to each other, best prices on the
// first row: bids descending on the left, asks ascending on the right.
func (ob *OrderBook) ShowOrderBook() string {
	ob.mu.Lock()
	depth := ob.depth()
	ob.mu.Unlock()

	var sb strings.Builder
	if err := depth.Render(&sb); err != nil {
		// strings.Builder never fails a write.
		return ""
	}
	return sb.String()
}

// Render writes the depth as a two column table.
func (d Depth) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "OWNER\tSIZE\tBID\t|\tASK\tSIZE\tOWNER")
	rows := max(len(d.Bids), len(d.Asks))
	for i := 0; i < rows; i++ {
		var bid, ask [3]string
		if i < len(d.Bids) {
			bid = cells(d.Bids[i])
		}
		if i < len(d.Asks) {
			ask = cells(d.Asks[i])
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t|\t%s\t%s\t%s\n",
			bid[0], bid[1], bid[2],
			ask[2], ask[1], ask[0],
		)
	}
	return tw.Flush()
}

// cells returns owner, size and price of an order.
func cells(order common.Order) [3]string {
	return [3]string{
		order.Owner,
		fmt.Sprintf("%d", order.Size),
		fmt.Sprintf("%d", order.Price),
	}
}
