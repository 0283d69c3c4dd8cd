package mqtt

import log "github.com/sirupsen/logrus"

// pendingMsg is a serialized message waiting for the broker.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
	system   bool
}

// outbox holds messages published while the broker is unreachable, oldest
// first. When full, the oldest system event is evicted before any press
// metric; metrics are evicted oldest first only when nothing else is left.
// Not safe for concurrent use; caller must synchronize.
type outbox struct {
	msgs     []pendingMsg
	capacity int
	dropped  int // messages evicted since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]pendingMsg, 0, capacity),
		capacity: capacity,
	}
}

// push queues msg, evicting one message when the outbox is full.
func (o *outbox) push(msg pendingMsg) {
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			log.Warnf("mqtt: outbox full (%d messages), evicting", o.capacity)
		}
		o.dropped++
		o.evict()
	}
	o.msgs = append(o.msgs, msg)
}

func (o *outbox) evict() {
	victim := 0
	for i, m := range o.msgs {
		if m.system {
			victim = i
			break
		}
	}
	o.msgs = append(o.msgs[:victim], o.msgs[victim+1:]...)
}

// drain returns the queued messages oldest first and empties the outbox.
func (o *outbox) drain() []pendingMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	if o.dropped > 0 {
		log.Warnf("mqtt: %d queued messages were evicted while offline", o.dropped)
	}

	out := make([]pendingMsg, len(o.msgs))
	copy(out, o.msgs)
	o.msgs = o.msgs[:0]
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
