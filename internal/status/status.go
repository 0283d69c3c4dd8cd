// Package status tracks daemon state for lifecycle events (startup,
// heartbeat, shutdown). It is owned by the poll loop and is not safe for
// concurrent use.
package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

// NetworkInfo contains network state written by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	CombineMs   int64
	SequenceMs  int64
	HeartbeatMs int64
	GPIODriver  string
	LinkPort    string
	ConsolePort string // empty = stdout
	Broker      string // empty = MQTT disabled
}

// Snapshot is a point-in-time view of daemon state.
type Snapshot struct {
	Device        string
	Session       string // random per daemon run; counts restart with it
	Counts        logic.Counts
	Total         int
	LastKey       int
	LastAction    string
	StartTime     time.Time
	Now           time.Time
	LinkConnected bool
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state.
type Tracker struct {
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given device name, start time and
// config, under a new session ID.
func NewTracker(device string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Device:    device,
			Session:   uuid.New().String(),
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetClock replaces the clock used to stamp snapshots.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// Update sets the session counts.
func (t *Tracker) Update(counts logic.Counts, total int) {
	t.snap.Counts = counts
	t.snap.Total = total
}

// RecordMetric remembers the most recently reported pattern.
func (t *Tracker) RecordMetric(m logic.Metric) {
	t.snap.LastKey = m.Key
	t.snap.LastAction = m.Name
	t.snap.Total = m.Count
}

// SetLinkConnected sets the wireless link status.
func (t *Tracker) SetLinkConnected(connected bool) {
	t.snap.LinkConnected = connected
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.snap.MQTTConnected = connected
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.snap.Network = info
}

// Snapshot returns a copy of the daemon state stamped with the current time.
func (t *Tracker) Snapshot() Snapshot {
	s := t.snap
	s.Now = t.now()
	return s
}
