// Package gpio provides button and LED access with hardware abstraction.
// The real implementations use the Linux GPIO character device or periph.io.
// The fake implementations allow testing without hardware.
package gpio

// Reader reads the two push-buttons.
type Reader interface {
	// Read returns whether Left and Right are pressed.
	// Buttons pull the line low: raw 0 = logical pressed.
	// Returns (leftPressed, rightPressed, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// LED drives the status LED.
type LED interface {
	Set(on bool) error
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinLeft  = 16
	DefaultPinRight = 17
	DefaultPinLED   = 5
)

// Driver names accepted by Open.
const (
	DriverCdev   = "cdev"
	DriverPeriph = "periph"
)

// NopLED is used when no status LED is wired.
type NopLED struct{}

// Set does nothing.
func (NopLED) Set(bool) error { return nil }

// Close does nothing.
func (NopLED) Close() error { return nil }
