// Package mqtt publishes press metrics and device lifecycle events to a broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

// TopicRoot is the root under which every device publishes.
const TopicRoot = "therapy/tracker"

// EventsTopic returns the topic for press metrics of the named device.
func EventsTopic(device string) string {
	return TopicRoot + "/" + device + "/events"
}

// SystemTopic returns the topic for lifecycle events of the named device.
func SystemTopic(device string) string {
	return TopicRoot + "/" + device + "/system"
}

// Lifecycle event names published on the system topic.
const (
	EventStartup     = "STARTUP"
	EventShutdown    = "SHUTDOWN"
	EventHeartbeat   = "HEARTBEAT"
	EventReconnected = "RECONNECTED"
)

// ReasonBrokerLost is the shutdown reason carried by the last will.
const ReasonBrokerLost = "MQTT_DISCONNECT"

// Publisher sends metrics and lifecycle events. Errors are reported to the
// caller and never stop the poll loop.
type Publisher interface {
	Publish(m logic.Metric) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a device lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	Reason    string // signal name for SHUTDOWN

	// RawPayload, when set, is published as is (a full status snapshot).
	RawPayload []byte
	Retained   bool
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Press PressPayload `json:"press"`
}

// PressPayload contains the reported pattern and its metrics.
type PressPayload struct {
	Timestamp  string `json:"timestamp"`
	Key        int    `json:"key"`
	Action     string `json:"action"`
	IntervalMs int64  `json:"interval_ms"`
	Count      int    `json:"count"`
}

// FormatPayload creates the JSON payload for a press metric.
func FormatPayload(m logic.Metric) ([]byte, error) {
	payload := Payload{
		Press: PressPayload{
			Timestamp:  m.Timestamp.UTC().Format(time.RFC3339),
			Key:        m.Key,
			Action:     m.Name,
			IntervalMs: m.Interval.Milliseconds(),
			Count:      m.Count,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the short form of a system event, used by the last will
// and RECONNECTED, which carry no status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload returns event.RawPayload if set, otherwise the short
// form. A zero Timestamp is left out.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}
