//go:build linux

package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphReader reads the buttons through periph.io, for kernels without the
// GPIO character device.
type PeriphReader struct {
	left  pgpio.PinIO
	right pgpio.PinIO
}

// NewPeriphReader initialises the periph host drivers and configures both
// pins as pulled-up inputs. Pins are addressed by their BCM numbers.
func NewPeriphReader(pinLeft, pinRight int) (*PeriphReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	left, err := periphInput(pinLeft)
	if err != nil {
		return nil, fmt.Errorf("left pin: %w", err)
	}
	right, err := periphInput(pinRight)
	if err != nil {
		return nil, fmt.Errorf("right pin: %w", err)
	}

	return &PeriphReader{left: left, right: right}, nil
}

func periphInput(pin int) (pgpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("no such pin GPIO%d", pin)
	}
	if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure GPIO%d: %w", pin, err)
	}
	return p, nil
}

// Read returns whether Left and Right are pressed (line pulled low).
func (r *PeriphReader) Read() (bool, bool, error) {
	return r.left.Read() == pgpio.Low, r.right.Read() == pgpio.Low, nil
}

// Close returns the pins to pulled-down inputs.
func (r *PeriphReader) Close() error {
	var errs []error
	if err := r.left.In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		errs = append(errs, fmt.Errorf("reset left pin: %w", err))
	}
	if err := r.right.In(pgpio.PullDown, pgpio.NoEdge); err != nil {
		errs = append(errs, fmt.Errorf("reset right pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
