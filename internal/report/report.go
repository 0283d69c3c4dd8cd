// Package report forwards press metrics to the output channels: the
// wireless serial link, the wired console and any other transport that
// can be adapted with ReporterFunc.
package report

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

// Reporter delivers metrics to one transport.
type Reporter interface {
	// Report sends a metric. Returns error if delivery fails (should not crash the process).
	Report(m logic.Metric) error

	// Close releases the transport.
	Close() error
}

// ReporterFunc adapts a function to a Reporter with a no-op Close.
type ReporterFunc func(m logic.Metric) error

// Report calls f(m).
func (f ReporterFunc) Report(m logic.Metric) error { return f(m) }

// Close does nothing.
func (f ReporterFunc) Close() error { return nil }

// FormatLink renders a metric for the dashboard on the wireless link.
func FormatLink(m logic.Metric) string {
	return fmt.Sprintf("KEY:%d,INTERVAL:%d,COUNT:%d\n", m.Key, m.Interval.Milliseconds(), m.Count)
}

// FormatConsole renders a metric for a human watching the wired console.
func FormatConsole(m logic.Metric) string {
	return fmt.Sprintf("KEY:%d, INTERVAL:%d, COUNT:%d\n", m.Key, m.Interval.Milliseconds(), m.Count)
}

// Multi fans a metric out to several reporters.
type Multi struct {
	names     []string
	reporters []Reporter
}

// NewMulti creates an empty fan-out.
func NewMulti() *Multi {
	return &Multi{}
}

// Add registers a reporter under name (used in log output).
func (m *Multi) Add(name string, r Reporter) {
	m.names = append(m.names, name)
	m.reporters = append(m.reporters, r)
}

// Len returns the number of registered reporters.
func (m *Multi) Len() int {
	return len(m.reporters)
}

// Report sends metric to every reporter. A failing reporter is logged and
// skipped; the others still receive the metric.
func (m *Multi) Report(metric logic.Metric) error {
	var errs []error
	for i, r := range m.reporters {
		if err := r.Report(metric); err != nil {
			log.WithError(err).WithField("transport", m.names[i]).Warn("report failed")
			errs = append(errs, fmt.Errorf("%s: %w", m.names[i], err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every reporter in reverse registration order.
func (m *Multi) Close() error {
	var errs []error
	for i := len(m.reporters) - 1; i >= 0; i-- {
		if err := m.reporters[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", m.names[i], err))
		}
	}
	return errors.Join(errs...)
}
