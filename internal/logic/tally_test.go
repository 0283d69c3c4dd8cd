package logic

import (
	"testing"
	"time"
)

func TestNewTally(t *testing.T) {
	tl := NewTally(at(0))
	if tl.Total() != 0 {
		t.Errorf("expected total 0, got %d", tl.Total())
	}
	if (tl.CountsSnapshot() != Counts{}) {
		t.Errorf("expected zero counts, got %+v", tl.CountsSnapshot())
	}
}

func TestTallyRecord(t *testing.T) {
	tl := NewTally(at(0))

	m := tl.Record(Pattern{Key: 1, Name: "LEFT", Presses: []Classification{LeftOnly}, First: at(2000), Last: at(2000)})
	if m.Count != 1 {
		t.Errorf("count: got %d, want 1", m.Count)
	}
	if m.Interval != 2*time.Second {
		t.Errorf("first interval runs from startup: got %v, want 2s", m.Interval)
	}
	if m.Key != 1 || m.Name != "LEFT" {
		t.Errorf("unexpected key %d (%s)", m.Key, m.Name)
	}
	if !m.Timestamp.Equal(at(2000)) {
		t.Errorf("timestamp: got %v, want %v", m.Timestamp, at(2000))
	}

	m = tl.Record(Pattern{Key: 10, Name: "LEFT RIGHT", Presses: []Classification{LeftOnly, RightOnly}, First: at(3500), Last: at(3900)})
	if m.Count != 2 {
		t.Errorf("count: got %d, want 2", m.Count)
	}
	if m.Interval != 1500*time.Millisecond {
		t.Errorf("interval: got %v, want 1.5s", m.Interval)
	}

	m = tl.Record(Pattern{Key: 3, Name: "BOTH", Presses: []Classification{Both}, First: at(5000), Last: at(5000)})
	if m.Interval != 1100*time.Millisecond {
		t.Errorf("interval measured from last press of previous pattern: got %v, want 1.1s", m.Interval)
	}

	want := Counts{Left: 2, Right: 1, Both: 1}
	if got := tl.CountsSnapshot(); got != want {
		t.Errorf("counts: got %+v, want %+v", got, want)
	}
	if tl.Total() != 3 {
		t.Errorf("total: got %d, want 3", tl.Total())
	}
}

func TestTallyIntervalNeverNegative(t *testing.T) {
	tl := NewTally(at(1000))
	m := tl.Record(Pattern{Key: 1, Presses: []Classification{LeftOnly}, First: at(500), Last: at(500)})
	if m.Interval != 0 {
		t.Errorf("interval: got %v, want 0", m.Interval)
	}
}

func TestTallyHeartbeat(t *testing.T) {
	tl := NewTally(at(0))
	interval := 15 * time.Minute

	if hb := tl.CheckHeartbeat(at(0).Add(14*time.Minute), interval); hb != nil {
		t.Error("heartbeat before interval elapsed")
	}

	tl.Record(Pattern{Key: 2, Presses: []Classification{RightOnly}, First: at(100), Last: at(100)})

	hb := tl.CheckHeartbeat(at(0).Add(15*time.Minute), interval)
	if hb == nil {
		t.Fatal("expected heartbeat")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("uptime: got %v, want 15m", hb.Uptime)
	}
	if hb.Total != 1 || hb.Counts.Right != 1 {
		t.Errorf("unexpected heartbeat counts: total=%d counts=%+v", hb.Total, hb.Counts)
	}

	if hb := tl.CheckHeartbeat(at(0).Add(20*time.Minute), interval); hb != nil {
		t.Error("heartbeat should wait a full interval after the previous one")
	}
	if hb := tl.CheckHeartbeat(at(0).Add(30*time.Minute), interval); hb == nil {
		t.Error("expected second heartbeat")
	}
}

func TestTallyHeartbeatDisabled(t *testing.T) {
	tl := NewTally(at(0))
	if hb := tl.CheckHeartbeat(at(0).Add(24*time.Hour), 0); hb != nil {
		t.Error("heartbeat should be disabled with zero interval")
	}
}
