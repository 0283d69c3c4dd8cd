package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/therapy-tracker/internal/logic"
)

// outboxCapacity bounds how many messages are queued while the broker is unreachable.
const outboxCapacity = 256

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client      paho.Client
	eventsTopic string
	systemTopic string

	mu       sync.Mutex // guards outbox and connects; paho calls onConnect from its own goroutine
	outbox   *outbox
	connects int
}

// NewRealPublisher creates a publisher connected to the given broker.
// The device name becomes the client ID and part of every topic.
func NewRealPublisher(broker, device string) (*RealPublisher, error) {
	p := &RealPublisher{
		eventsTopic: EventsTopic(device),
		systemTopic: SystemTopic(device),
		outbox:      newOutbox(outboxCapacity),
	}

	will, err := lastWill()
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(device).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(p.systemTopic, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("mqtt: connection lost")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		// ConnectRetry keeps trying in the background; messages are queued until then.
		log.WithField("broker", broker).Warn("mqtt: broker not reachable yet, queueing")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a press metric to the MQTT broker.
func (p *RealPublisher) Publish(m logic.Metric) error {
	payload, err := FormatPayload(m)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(pendingMsg{topic: p.eventsTopic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	return p.send(pendingMsg{topic: p.systemTopic, payload: payload, qos: 1, retained: event.Retained, system: true})
}

// IsConnected reports whether the client currently has a live connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

// lastWill is the SHUTDOWN payload the broker publishes when the connection
// drops. It is registered once at connect time, so it carries no timestamp.
func lastWill() ([]byte, error) {
	return FormatSystemPayload(SystemEvent{Event: EventShutdown, Reason: ReasonBrokerLost})
}

// send publishes msg, or queues it for replay when the broker is unreachable.
// The connection check and the push share p.mu with onConnect's drain, so a
// queued message is either drained by the next onConnect or published here.
func (p *RealPublisher) send(msg pendingMsg) error {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.outbox.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.publish(msg)
}

func (p *RealPublisher) publish(msg pendingMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// onConnect replays queued messages and, after the first connection,
// announces the reconnection.
func (p *RealPublisher) onConnect(_ paho.Client) {
	p.mu.Lock()
	pending := p.outbox.drain()
	p.connects++
	reconnect := p.connects > 1
	p.mu.Unlock()

	if len(pending) > 0 {
		log.Printf("mqtt: connected, replaying %d queued messages", len(pending))
	}
	for _, msg := range pending {
		if err := p.publish(msg); err != nil {
			log.WithError(err).Warn("mqtt: replay failed")
		}
	}

	if !reconnect {
		return
	}
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventReconnected})
	if err != nil {
		return
	}
	if err := p.publish(pendingMsg{topic: p.systemTopic, payload: payload, qos: 1, retained: true, system: true}); err != nil {
		log.WithError(err).Warn("mqtt: reconnect announcement failed")
	}
}
