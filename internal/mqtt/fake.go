package mqtt

import (
	"github.com/sweeney/therapy-tracker/internal/logic"
)

// Message is one publish as it would reach the broker.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// FakePublisher records what a RealPublisher would send, for test assertions.
type FakePublisher struct {
	// Device selects the topics messages are recorded under.
	Device string

	Metrics      []logic.Metric
	SystemEvents []SystemEvent

	// Messages holds every publish in order, metrics and system events alike.
	Messages []Message

	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

// NewFakePublisher creates a FakePublisher for the device "test".
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Device: "test"}
}

// Publish records the metric and its events-topic message.
func (f *FakePublisher) Publish(m logic.Metric) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(m)
	if err != nil {
		return err
	}
	f.Metrics = append(f.Metrics, m)
	f.Messages = append(f.Messages, Message{Topic: EventsTopic(f.Device), Payload: payload})
	return nil
}

// PublishSystem records the event and its system-topic message.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.Messages = append(f.Messages, Message{Topic: SystemTopic(f.Device), Payload: payload, Retained: event.Retained})
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected returns Connected.
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Payloads returns the recorded payloads published to topic.
func (f *FakePublisher) Payloads(topic string) [][]byte {
	var out [][]byte
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

// Reset clears everything recorded and any injected errors.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{Device: f.Device}
}
