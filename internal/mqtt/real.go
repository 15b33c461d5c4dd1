package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
)

const CONNECT_TIMEOUT = 10 * time.Second

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
}

// NewRealPublisher connects to broker. The availability topic is retained as
// "online" and the broker flips it to "offline" if the connection drops.
func NewRealPublisher(broker string, clientID string) (*RealPublisher, error) {
	if clientID == "" {
		clientID = DEFAULT_CLIENT_ID
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetWill(TOPIC_AVAILABILITY, "offline", 1, true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			c.Publish(TOPIC_AVAILABILITY, 1, true, "online")
		})

	client := paho.NewClient(opts)
	if err := connect(client, CONNECT_TIMEOUT); err != nil {
		return nil, err
	}

	return &RealPublisher{client: client}, nil
}

// connect stops the client when the first connection fails so its retry
// loop does not outlive the publisher.
func connect(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("connect to broker: %w", err)
	}

	return nil
}

func (p *RealPublisher) PublishEvent(event irrigation.Event) error {
	payload, err := FormatEventPayload(event)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}

	return p.publish(TOPIC_EVENTS, 1, false, payload)
}

// PublishStatus is retained so new subscribers see the latest snapshot.
func (p *RealPublisher) PublishStatus(status irrigation.Status, at time.Time) error {
	payload, err := FormatStatusPayload(status, at)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}

	return p.publish(TOPIC_STATUS, 0, true, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

// Close marks the server offline and disconnects.
func (p *RealPublisher) Close() error {
	p.client.Publish(TOPIC_AVAILABILITY, 1, true, "offline").WaitTimeout(time.Second)
	p.client.Disconnect(1000)
	return nil
}
