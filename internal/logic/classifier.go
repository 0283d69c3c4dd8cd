package logic

import "time"

// Default timing, matching the original firmware.
const (
	DefaultDebounceDelay = 50 * time.Millisecond
	DefaultCombineWindow = 50 * time.Millisecond
)

// Classifier debounces two push-buttons and classifies each accepted press
// as LeftOnly, RightOnly or Both. It is not safe for concurrent use.
type Classifier struct {
	debounceDelay time.Duration
	combineWindow time.Duration
	resample      Sampler
	sleep         Sleeper

	prevLeft  bool
	prevRight bool
	lastEvent time.Time
	fired     bool
}

// NewClassifier creates a classifier with both buttons released.
// resample is called once after the combine window to decide between a
// single press and a two-button press. A nil sleep skips the wait.
func NewClassifier(debounceDelay, combineWindow time.Duration, resample Sampler, sleep Sleeper) *Classifier {
	return &Classifier{
		debounceDelay: debounceDelay,
		combineWindow: combineWindow,
		resample:      resample,
		sleep:         sleep,
	}
}

// Poll takes a new raw sample and returns its classification.
// When a press edge is accepted, Poll blocks for the combine window before
// re-sampling the buttons.
func (c *Classifier) Poll(input Input) Classification {
	leftEdge := input.Left && !c.prevLeft
	rightEdge := input.Right && !c.prevRight

	if (!leftEdge && !rightEdge) || c.suppressed(input.Time) {
		c.prevLeft, c.prevRight = input.Left, input.Right
		return None
	}

	if c.sleep != nil {
		c.sleep(c.combineWindow)
	}
	left, right := input.Left, input.Right
	if c.resample != nil {
		if l, r, ok := c.resample(); ok {
			left, right = l, r
		}
	}

	var result Classification
	switch {
	case left && right:
		result = Both
	case leftEdge:
		result = LeftOnly
	default:
		result = RightOnly
	}

	c.prevLeft, c.prevRight = left, right
	c.lastEvent = input.Time
	c.fired = true
	return result
}

// suppressed reports whether the shared debounce window of the last
// emitted event is still open. Nothing is gated before the first event.
func (c *Classifier) suppressed(now time.Time) bool {
	return c.fired && now.Sub(c.lastEvent) <= c.debounceDelay
}

// LastEvent returns the time of the last emitted event, and false if no
// event has been emitted yet.
func (c *Classifier) LastEvent() (time.Time, bool) {
	return c.lastEvent, c.fired
}

// Previous returns the last raw sample the classifier remembers.
func (c *Classifier) Previous() (left, right bool) {
	return c.prevLeft, c.prevRight
}
