package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Broker is the narrow MQTT surface the source needs. The infrastructure
// mqtt.Client satisfies this.
type Broker interface {
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte) error) error
	Unsubscribe(topic string) error
	SetOnDisconnect(fn func(err error))
	IsConnected() bool
}

// connectNotification is the JSON payload on the connect topic.
type connectNotification struct {
	Identity string `json:"identity"`
}

// MQTTSource consumes gift notifications from an MQTT broker.
//
// An external feed connector publishes gift and connect notifications to
// the configured topics; this adapter delivers them to handlers in broker
// arrival order. Paho invokes each subscription's handler sequentially,
// which gives the dispatcher the synchronous, ordered delivery the
// processing model relies on.
//
// A broker disconnect ends Run with an error for the supervisor to
// classify; the source itself never reconnects.
type MQTTSource struct {
	broker       Broker
	giftTopic    string
	connectTopic string
	qos          byte

	mu        sync.Mutex
	onConnect func(identity string)
	onGift    func(ev Event)
}

// NewMQTTSource creates a source reading from the given topics.
func NewMQTTSource(broker Broker, giftTopic, connectTopic string, qos byte) *MQTTSource {
	return &MQTTSource{
		broker:       broker,
		giftTopic:    giftTopic,
		connectTopic: connectTopic,
		qos:          qos,
	}
}

// OnConnect implements Source.
func (s *MQTTSource) OnConnect(fn func(identity string)) {
	s.mu.Lock()
	s.onConnect = fn
	s.mu.Unlock()
}

// OnGift implements Source.
func (s *MQTTSource) OnGift(fn func(ev Event)) {
	s.mu.Lock()
	s.onGift = fn
	s.mu.Unlock()
}

// Run implements Source.
//
// It subscribes to the gift and connect topics, then blocks until the
// broker connection drops (returned as an error) or ctx is cancelled
// (returned as ctx.Err() so Classify reports user interruption).
func (s *MQTTSource) Run(ctx context.Context) error {
	if !s.broker.IsConnected() {
		return fmt.Errorf("stream: broker not connected")
	}

	// Buffered so the disconnect callback never blocks the MQTT client.
	disconnected := make(chan error, 1)
	s.broker.SetOnDisconnect(func(err error) {
		select {
		case disconnected <- err:
		default:
		}
	})

	if err := s.broker.Subscribe(s.connectTopic, s.qos, s.handleConnect); err != nil {
		return fmt.Errorf("subscribing to connect topic: %w", err)
	}
	if err := s.broker.Subscribe(s.giftTopic, s.qos, s.handleGift); err != nil {
		_ = s.broker.Unsubscribe(s.connectTopic)
		return fmt.Errorf("subscribing to gift topic: %w", err)
	}

	defer func() {
		_ = s.broker.Unsubscribe(s.giftTopic)
		_ = s.broker.Unsubscribe(s.connectTopic)
		s.broker.SetOnDisconnect(nil)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-disconnected:
		if err == nil {
			err = fmt.Errorf("connection lost")
		}
		return fmt.Errorf("stream: broker disconnected: %w", err)
	}
}

// handleGift decodes and delivers one gift notification.
func (s *MQTTSource) handleGift(_ string, payload []byte) error {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("decoding gift notification: %w", err)
	}
	if ev.Category == "" {
		return fmt.Errorf("gift notification missing category")
	}

	s.mu.Lock()
	fn := s.onGift
	s.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
	return nil
}

// handleConnect decodes and delivers the connect notification.
func (s *MQTTSource) handleConnect(_ string, payload []byte) error {
	var note connectNotification
	if err := json.Unmarshal(payload, &note); err != nil {
		return fmt.Errorf("decoding connect notification: %w", err)
	}

	s.mu.Lock()
	fn := s.onConnect
	s.mu.Unlock()

	if fn != nil {
		fn(note.Identity)
	}
	return nil
}
