package report

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

// DefaultBaud matches the dashboard's serial settings.
const DefaultBaud = 115200

// DefaultLinkRetry is how long the link waits before reopening a port that
// had no client.
const DefaultLinkRetry = 5 * time.Second

// Opener opens a named serial port for writing.
type Opener func(name string, baud int) (io.WriteCloser, error)

// OpenSerial opens a serial port with 8N1 framing at baud.
func OpenSerial(name string, baud int) (io.WriteCloser, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return port, nil
}

// LinkConfig configures the wireless serial link.
type LinkConfig struct {
	Port  string        // e.g. /dev/rfcomm0
	Baud  int           // 0 = DefaultBaud
	Retry time.Duration // 0 = DefaultLinkRetry

	// Open and Now are injectable for tests; nil uses OpenSerial and time.Now.
	Open Opener
	Now  func() time.Time
}

// LinkReporter writes metrics to the wireless serial link. The RFCOMM
// device only opens while a client is bound, so a failed open means "no
// client" and the metric is dropped.
type LinkReporter struct {
	cfg         LinkConfig
	port        io.WriteCloser
	attempted   bool
	lastAttempt time.Time
	dropped     int
}

// NewLinkReporter creates a link reporter. The port is opened lazily.
func NewLinkReporter(cfg LinkConfig) *LinkReporter {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.Retry == 0 {
		cfg.Retry = DefaultLinkRetry
	}
	if cfg.Open == nil {
		cfg.Open = OpenSerial
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &LinkReporter{cfg: cfg}
}

// Report writes the metric if a client is connected.
func (l *LinkReporter) Report(m logic.Metric) error {
	if !l.connect() {
		l.dropped++
		log.WithField("port", l.cfg.Port).Debugf("link: no client, dropped key %d", m.Key)
		return nil
	}

	if _, err := io.WriteString(l.port, FormatLink(m)); err != nil {
		l.disconnect()
		return fmt.Errorf("write link: %w", err)
	}
	return nil
}

// Connected reports whether the link port is open.
func (l *LinkReporter) Connected() bool {
	return l.port != nil
}

// Dropped returns the number of metrics dropped while no client was connected.
func (l *LinkReporter) Dropped() int {
	return l.dropped
}

// Close closes the port if open.
func (l *LinkReporter) Close() error {
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}

func (l *LinkReporter) connect() bool {
	if l.port != nil {
		return true
	}

	now := l.cfg.Now()
	if l.attempted && now.Sub(l.lastAttempt) < l.cfg.Retry {
		return false
	}
	l.attempted = true
	l.lastAttempt = now

	port, err := l.cfg.Open(l.cfg.Port, l.cfg.Baud)
	if err != nil {
		log.WithError(err).Debug("link: open failed")
		return false
	}
	l.port = port
	log.Printf("link: connected on %s", l.cfg.Port)
	return true
}

func (l *LinkReporter) disconnect() {
	if l.port == nil {
		return
	}
	if err := l.port.Close(); err != nil {
		log.WithError(err).Debug("link: close after write error")
	}
	l.port = nil
	log.Printf("link: disconnected from %s", l.cfg.Port)
}
