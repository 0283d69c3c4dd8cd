package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewTracker(t *testing.T) {
	cfg := Config{PollMs: 5, DebounceMs: 50, LinkPort: "/dev/rfcomm0"}
	tr := NewTracker("therapy-tracker", start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Device != "therapy-tracker" {
		t.Errorf("Device: got %q", snap.Device)
	}
	if snap.Config.PollMs != 5 {
		t.Errorf("Config.PollMs: got %d, want 5", snap.Config.PollMs)
	}
	if snap.LinkConnected || snap.MQTTConnected {
		t.Error("expected transports disconnected initially")
	}
}

func TestTrackerSession(t *testing.T) {
	a := NewTracker("d", start, Config{}).Snapshot().Session
	b := NewTracker("d", start, Config{}).Snapshot().Session

	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("session %q is not a UUID: %v", a, err)
	}
	if a == b {
		t.Error("each tracker should start a new session")
	}

	var parsed StatusJSON
	snap := NewTracker("d", start, Config{}).Snapshot()
	if err := json.Unmarshal(FormatStatusEvent(snap, "STARTUP", ""), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Session != snap.Session {
		t.Errorf("session: got %q, want %q", parsed.Status.Session, snap.Session)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker("d", start, Config{})

	tr.Update(logic.Counts{Left: 3, Both: 1}, 4)
	tr.RecordMetric(logic.Metric{Key: 36, Name: "DOUBLE LEFT", Count: 5})

	snap := tr.Snapshot()
	if snap.Counts.Left != 3 || snap.Counts.Both != 1 {
		t.Errorf("Counts: got %+v", snap.Counts)
	}
	if snap.Total != 5 {
		t.Errorf("Total: got %d, want 5 (from last metric)", snap.Total)
	}
	if snap.LastKey != 36 || snap.LastAction != "DOUBLE LEFT" {
		t.Errorf("last metric: got %d (%s)", snap.LastKey, snap.LastAction)
	}
}

func TestSetConnectivity(t *testing.T) {
	tr := NewTracker("d", start, Config{})

	tr.SetLinkConnected(true)
	tr.SetMQTTConnected(true)
	snap := tr.Snapshot()
	if !snap.LinkConnected || !snap.MQTTConnected {
		t.Error("expected both transports connected")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker("d", start, Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSnapshotUsesClock(t *testing.T) {
	tr := NewTracker("d", start, Config{})
	tr.SetClock(func() time.Time { return start.Add(15 * time.Minute) })

	snap := tr.Snapshot()
	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker("d", start, Config{})
	tr.Update(logic.Counts{Left: 1}, 1)

	snap1 := tr.Snapshot()
	tr.Update(logic.Counts{Left: 1, Right: 1}, 2)

	if snap1.Counts.Right != 0 || snap1.Total != 1 {
		t.Error("snapshot should be a copy")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		Device:        "therapy-tracker",
		Counts:        logic.Counts{Left: 5, Right: 2, Both: 1},
		Total:         6,
		LastKey:       3,
		LastAction:    "BOTH",
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		LinkConnected: true,
		MQTTConnected: true,
		Config: Config{
			PollMs: 5, DebounceMs: 50, CombineMs: 50, SequenceMs: 1000, HeartbeatMs: 900000,
			GPIODriver: "cdev", LinkPort: "/dev/rfcomm0", Broker: "tcp://localhost:1883",
		},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", s.Event)
	}
	if s.Reason != "" {
		t.Errorf("Reason: got %q, want empty", s.Reason)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if s.Total != 6 || s.LastKey != 3 || s.LastAction != "BOTH" {
		t.Errorf("session: got total=%d key=%d action=%q", s.Total, s.LastKey, s.LastAction)
	}
	if s.Counts.Left != 5 || s.Counts.Right != 2 || s.Counts.Both != 1 {
		t.Errorf("Counts: got %+v", s.Counts)
	}
	if !s.Link.Connected || s.Link.Port != "/dev/rfcomm0" {
		t.Errorf("Link: got %+v", s.Link)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if s.Config.SequenceMs != 1000 || s.Config.GPIODriver != "cdev" {
		t.Errorf("Config: got %+v", s.Config)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	snap := Snapshot{StartTime: start, Now: start.Add(30 * time.Minute)}

	data := FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("Reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsEmptyFields(t *testing.T) {
	snap := Snapshot{StartTime: start, Now: start.Add(time.Second)}

	data := FormatStatusEvent(snap, "STARTUP", "")

	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	for _, key := range []string{"reason", "network", "last_action"} {
		if _, exists := status[key]; exists {
			t.Errorf("%s should be omitted when empty", key)
		}
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatStatusEventWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Minute),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
	}

	var parsed StatusJSON
	json.Unmarshal(FormatStatusEvent(snap, "HEARTBEAT", ""), &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}
