package mqtt

import (
	"testing"
)

func metricMsg(i int) pendingMsg {
	return pendingMsg{topic: EventsTopic("t"), payload: []byte{byte(i)}}
}

func systemMsg(i int) pendingMsg {
	return pendingMsg{topic: SystemTopic("t"), payload: []byte{byte(i)}, qos: 1, retained: true, system: true}
}

func payloads(msgs []pendingMsg) []byte {
	out := make([]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload[0]
	}
	return out
}

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxKeepsOrder(t *testing.T) {
	o := newOutbox(10)
	o.push(systemMsg(0))
	o.push(metricMsg(1))
	o.push(metricMsg(2))
	o.push(systemMsg(3))

	if o.len() != 4 {
		t.Fatalf("len: got %d, want 4", o.len())
	}
	got := o.drain()
	if string(payloads(got)) != string([]byte{0, 1, 2, 3}) {
		t.Errorf("unexpected order %v", payloads(got))
	}
	if !got[0].retained || got[0].qos != 1 || got[0].topic != "therapy/tracker/t/system" {
		t.Errorf("message fields not preserved: %+v", got[0])
	}
	if o.drain() != nil {
		t.Error("second drain should be empty")
	}
}

func TestOutboxEvictsSystemEventsFirst(t *testing.T) {
	o := newOutbox(4)
	o.push(metricMsg(0))
	o.push(systemMsg(1))
	o.push(metricMsg(2))
	o.push(systemMsg(3))

	o.push(metricMsg(4)) // evicts 1
	o.push(metricMsg(5)) // evicts 3

	got := payloads(o.drain())
	if string(got) != string([]byte{0, 2, 4, 5}) {
		t.Errorf("got %v, want [0 2 4 5]", got)
	}
}

func TestOutboxEvictsOldestMetricWhenNoSystemEvents(t *testing.T) {
	o := newOutbox(3)
	for i := 0; i < 5; i++ {
		o.push(metricMsg(i))
	}

	got := payloads(o.drain())
	if string(got) != string([]byte{2, 3, 4}) {
		t.Errorf("got %v, want [2 3 4]", got)
	}
}

func TestOutboxCountsDropped(t *testing.T) {
	o := newOutbox(2)
	for i := 0; i < 5; i++ {
		o.push(metricMsg(i))
	}
	if o.dropped != 3 {
		t.Errorf("dropped: got %d, want 3", o.dropped)
	}

	o.drain()
	if o.dropped != 0 {
		t.Error("drain should reset the dropped count")
	}
}

func TestOutboxReusableAfterDrain(t *testing.T) {
	o := newOutbox(2)
	o.push(metricMsg(0))
	first := o.drain()
	o.push(metricMsg(1))

	if first[0].payload[0] != 0 {
		t.Error("drained slice must not alias later pushes")
	}
	if got := payloads(o.drain()); len(got) != 1 || got[0] != 1 {
		t.Errorf("got %v, want [1]", got)
	}
}
