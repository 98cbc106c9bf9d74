// Package watch renders the live order board to a terminal.
package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/fabiogif/moday-board/pkg/board"
)

// Renderer draws the four board columns to an output stream.
// Orders with a pending status write are marked so the operator can
// see which cards are mid-flight.
type Renderer struct {
	out io.Writer

	header   func(format string, a ...interface{}) string
	card     func(format string, a ...interface{}) string
	pending  func(format string, a ...interface{}) string
	delivery func(format string, a ...interface{}) string
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:      out,
		header:   color.New(color.FgCyan, color.Bold).SprintfFunc(),
		card:     color.New(color.FgWhite).SprintfFunc(),
		pending:  color.New(color.FgYellow).SprintfFunc(),
		delivery: color.New(color.FgMagenta).SprintfFunc(),
	}
}

// Render draws every column with its orders. inFlight lists the
// identifies of orders whose status write has not yet been confirmed.
func (r *Renderer) Render(columns []board.ColumnView, inFlight []string) {
	pending := make(map[string]bool, len(inFlight))
	for _, identify := range inFlight {
		pending[identify] = true
	}

	fmt.Fprintln(r.out)
	for _, column := range columns {
		fmt.Fprintln(r.out, r.header("%s (%d)", column.Status, len(column.Orders)))
		if len(column.Orders) == 0 {
			fmt.Fprintln(r.out, "  -")
			continue
		}
		for _, order := range column.Orders {
			fmt.Fprintln(r.out, r.cardLine(order, pending[order.Identify]))
		}
	}
}

func (r *Renderer) cardLine(order board.Order, pending bool) string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(r.card("#%s", order.Identify))
	if order.Client.Name != "" {
		b.WriteString("  ")
		b.WriteString(order.Client.Name)
	}
	if order.IsDelivery {
		b.WriteString("  ")
		b.WriteString(r.delivery("delivery"))
	} else if order.Table != "" {
		b.WriteString(fmt.Sprintf("  table %s", order.Table))
	}
	b.WriteString(fmt.Sprintf("  %.2f", order.Total))
	if pending {
		b.WriteString("  ")
		b.WriteString(r.pending("(updating...)"))
	}
	return b.String()
}
