// Package notify provides completion notifiers for long-running fetches.
package notify

import (
	"fmt"
	"io"
	"os"
)

// BellNotifier rings the terminal bell when a query completes.
// Long analytical queries run for minutes; the bell lets the operator
// look away from the terminal. Failures to write are ignored.
type BellNotifier struct {
	out io.Writer
}

// NewBellNotifier creates a notifier writing to stdout.
func NewBellNotifier() *BellNotifier {
	return &BellNotifier{out: os.Stdout}
}

// NewBellNotifierTo creates a notifier writing to the given writer.
func NewBellNotifierTo(w io.Writer) *BellNotifier {
	return &BellNotifier{out: w}
}

// Notify rings the terminal bell.
func (n *BellNotifier) Notify() {
	fmt.Fprint(n.out, "\a")
}

// NullNotifier discards notifications. Used in tests and non-interactive runs.
type NullNotifier struct{}

// NewNullNotifier creates a new NullNotifier.
func NewNullNotifier() *NullNotifier {
	return &NullNotifier{}
}

// Notify is a no-op.
func (n *NullNotifier) Notify() {}
