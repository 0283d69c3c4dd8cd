package gpio

import "fmt"

// Open returns a Reader for the named driver.
func Open(driver string, pinLeft, pinRight int) (Reader, error) {
	switch driver {
	case DriverCdev, "":
		r, err := NewRealReader(pinLeft, pinRight)
		if err != nil {
			return nil, err
		}
		return r, nil
	case DriverPeriph:
		r, err := NewPeriphReader(pinLeft, pinRight)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown gpio driver %q", driver)
	}
}

// OpenLED returns the status LED on pin, or a NopLED when pin is negative.
func OpenLED(pin int) (LED, error) {
	if pin < 0 {
		return NopLED{}, nil
	}
	led, err := NewRealLED(pin)
	if err != nil {
		return nil, err
	}
	return led, nil
}
