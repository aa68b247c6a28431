package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/gadomski/atlas/internal/config"
	"github.com/gadomski/atlas/internal/heartbeat"
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
	qos    byte
}

// NewRealPublisher connects to the broker named in cfg.
func NewRealPublisher(cfg config.MQTTConfig) (*RealPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password())
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt: connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to broker: %w", err)
	}

	return &RealPublisher{
		client: client,
		topic:  cfg.Topic,
		qos:    byte(cfg.QoS),
	}, nil
}

// Publish sends a heartbeat to the broker.
func (p *RealPublisher) Publish(h heartbeat.Heartbeat) error {
	payload, err := FormatPayload(h)
	if err != nil {
		return fmt.Errorf("mqtt: format payload: %w", err)
	}

	// Retained, so a subscriber connecting between heartbeats still sees
	// the station's latest state.
	token := p.client.Publish(p.topic, p.qos, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
