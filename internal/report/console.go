package report

import (
	"fmt"
	"io"
	"os"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

// ConsoleReporter writes metrics to the wired console.
type ConsoleReporter struct {
	w io.Writer
	c io.Closer
}

// NewConsoleReporter writes to w and never closes it.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// OpenConsole returns a console on the given UART, or on stdout when port is empty.
// A nil open uses OpenSerial.
func OpenConsole(port string, baud int, open Opener) (*ConsoleReporter, error) {
	if port == "" {
		return NewConsoleReporter(os.Stdout), nil
	}
	if open == nil {
		open = OpenSerial
	}
	if baud == 0 {
		baud = DefaultBaud
	}
	wc, err := open(port, baud)
	if err != nil {
		return nil, fmt.Errorf("open console: %w", err)
	}
	return &ConsoleReporter{w: wc, c: wc}, nil
}

// Report writes one console line.
func (c *ConsoleReporter) Report(m logic.Metric) error {
	if _, err := io.WriteString(c.w, FormatConsole(m)); err != nil {
		return fmt.Errorf("write console: %w", err)
	}
	return nil
}

// Close closes the UART, if the console owns one.
func (c *ConsoleReporter) Close() error {
	if c.c == nil {
		return nil
	}
	return c.c.Close()
}
