//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the buttons from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip     *gpiocdev.Chip
	leftPin  *gpiocdev.Line
	rightPin *gpiocdev.Line
}

// NewRealReader creates a button reader for actual Raspberry Pi hardware.
func NewRealReader(pinLeft, pinRight int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Buttons short the line to ground, so hold it high while released.
	leftLine, err := chip.RequestLine(pinLeft, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request left pin %d: %w", pinLeft, err)
	}

	rightLine, err := chip.RequestLine(pinRight, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		leftLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request right pin %d: %w", pinRight, err)
	}

	return &RealReader{
		chip:     chip,
		leftPin:  leftLine,
		rightPin: rightLine,
	}, nil
}

// Read returns whether Left and Right are pressed.
// Inverts raw GPIO: raw low (0) = pressed, raw high (1) = released.
func (r *RealReader) Read() (bool, bool, error) {
	leftRaw, err := r.leftPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read left pin: %w", err)
	}

	rightRaw, err := r.rightPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read right pin: %w", err)
	}

	return leftRaw == 0, rightRaw == 0, nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to leave the header in a clean state for shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	if r.leftPin != nil {
		if err := r.leftPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure left pin: %w", err))
		}
		if err := r.leftPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close left pin: %w", err))
		}
	}
	if r.rightPin != nil {
		if err := r.rightPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure right pin: %w", err))
		}
		if err := r.rightPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close right pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealLED drives the status LED through the GPIO character device.
type RealLED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealLED requests pin as an output, initially off.
func NewRealLED(pin int) (*RealLED, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request led pin %d: %w", pin, err)
	}

	return &RealLED{chip: chip, line: line}, nil
}

// Set switches the LED on or off.
func (l *RealLED) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	return nil
}

// Close turns the LED off and releases the line.
func (l *RealLED) Close() error {
	var errs []error
	if err := l.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("turn off led: %w", err))
	}
	if err := l.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close led pin: %w", err))
	}
	if err := l.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
