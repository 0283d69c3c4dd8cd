// Package logic contains the pure input-handling logic of the tracker:
// press classification, pattern grouping and session metrics.
// This package has NO external dependencies (no GPIO, serial, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters, and the one blocking
// wait the classifier needs is delegated to a Sleeper.
package logic

import "time"

// Classification is the result of a single poll.
type Classification uint8

const (
	None Classification = iota
	LeftOnly
	RightOnly
	Both
)

// String returns the dashboard name of the classification.
func (c Classification) String() string {
	switch c {
	case LeftOnly:
		return "LEFT"
	case RightOnly:
		return "RIGHT"
	case Both:
		return "BOTH"
	default:
		return "NONE"
	}
}

// Code returns the numeric key code used on the serial links.
func (c Classification) Code() int {
	return int(c)
}

// Input represents a single raw sample of both buttons.
type Input struct {
	Left  bool // true = pressed (already inverted from raw GPIO)
	Right bool
	Time  time.Time
}

// Sampler re-reads the raw button states. ok is false when the read failed.
type Sampler func() (left, right, ok bool)

// Sleeper blocks the caller for d.
type Sleeper func(d time.Duration)

// Counts tracks the number of presses of each classification since startup.
type Counts struct {
	Left  int
	Right int
	Both  int
}

// Metric is one reported pattern with its session metrics.
type Metric struct {
	Timestamp time.Time
	Key       int
	Name      string
	Interval  time.Duration
	Count     int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
	Total     int
}
