package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Device        string       `json:"device"`
	Session       string       `json:"session"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Total         int          `json:"session_count"`
	LastKey       int          `json:"last_key"`
	LastAction    string       `json:"last_action,omitempty"`
	Counts        CountsJSON   `json:"press_counts"`
	Link          LinkStatus   `json:"link"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// CountsJSON is the JSON representation of press counts.
type CountsJSON struct {
	Left  int `json:"left"`
	Right int `json:"right"`
	Both  int `json:"both"`
}

// LinkStatus reports wireless serial link state.
type LinkStatus struct {
	Connected bool   `json:"connected"`
	Port      string `json:"port"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	CombineMs   int64  `json:"combine_ms"`
	SequenceMs  int64  `json:"sequence_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	GPIODriver  string `json:"gpio_driver"`
	ConsolePort string `json:"console_port,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Device:        snap.Device,
		Session:       snap.Session,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Total:         snap.Total,
		LastKey:       snap.LastKey,
		LastAction:    snap.LastAction,
		Counts: CountsJSON{
			Left:  snap.Counts.Left,
			Right: snap.Counts.Right,
			Both:  snap.Counts.Both,
		},
		Link: LinkStatus{Connected: snap.LinkConnected, Port: snap.Config.LinkPort},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			CombineMs:   snap.Config.CombineMs,
			SequenceMs:  snap.Config.SequenceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			GPIODriver:  snap.Config.GPIODriver,
			ConsolePort: snap.Config.ConsolePort,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
