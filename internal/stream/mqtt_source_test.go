package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockBroker simulates subscription delivery and disconnects.
type mockBroker struct {
	mu           sync.Mutex
	connected    bool
	handlers     map[string]func(topic string, payload []byte) error
	onDisconnect func(err error)
	subscribeErr error
}

func newMockBroker() *mockBroker {
	return &mockBroker{
		connected: true,
		handlers:  make(map[string]func(string, []byte) error),
	}
}

func (m *mockBroker) Subscribe(topic string, _ byte, handler func(string, []byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.handlers[topic] = handler
	return nil
}

func (m *mockBroker) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, topic)
	return nil
}

func (m *mockBroker) SetOnDisconnect(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnect = fn
}

func (m *mockBroker) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockBroker) deliver(topic string, payload []byte) error {
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()
	if handler == nil {
		return errors.New("no handler")
	}
	return handler(topic, payload)
}

func (m *mockBroker) dropConnection(err error) {
	m.mu.Lock()
	fn := m.onDisconnect
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func TestMQTTSource_DeliversGiftsInOrder(t *testing.T) {
	broker := newMockBroker()
	src := NewMQTTSource(broker, "giftrelay/event/nyala_live/gift", "giftrelay/event/nyala_live/connect", 1)

	var mu sync.Mutex
	var got []Event
	src.OnGift(func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	// Wait for the subscription to be registered.
	deadline := time.After(time.Second)
	for {
		broker.mu.Lock()
		ready := len(broker.handlers) == 2
		broker.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscriptions never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	payloads := []string{
		`{"category":"Rose","count":5,"user":"alice"}`,
		`{"category":"Cow","count":1,"user":"bob"}`,
	}
	for _, p := range payloads {
		if err := broker.deliver("giftrelay/event/nyala_live/gift", []byte(p)); err != nil {
			t.Fatalf("deliver error: %v", err)
		}
	}

	mu.Lock()
	if len(got) != 2 {
		t.Fatalf("delivered %d events, want 2", len(got))
	}
	if got[0].Category != "Rose" || got[0].Magnitude != 5 || got[0].Actor != "alice" {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Category != "Cow" {
		t.Errorf("second event = %+v", got[1])
	}
	mu.Unlock()

	cancel()
	if err := <-done; Classify(err).Kind != FailureCanceled {
		t.Errorf("Run() after cancel returned %v, want canceled classification", err)
	}
}

func TestMQTTSource_ConnectNotification(t *testing.T) {
	broker := newMockBroker()
	src := NewMQTTSource(broker, "g", "c", 1)

	var mu sync.Mutex
	var identity string
	src.OnConnect(func(id string) {
		mu.Lock()
		identity = id
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Run(ctx) }()

	deadline := time.After(time.Second)
	for {
		broker.mu.Lock()
		ready := len(broker.handlers) == 2
		broker.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscriptions never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := broker.deliver("c", []byte(`{"identity":"@streamer"}`)); err != nil {
		t.Fatalf("deliver error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if identity != "@streamer" {
		t.Errorf("identity = %q, want @streamer", identity)
	}
}

func TestMQTTSource_DisconnectEndsRun(t *testing.T) {
	broker := newMockBroker()
	src := NewMQTTSource(broker, "g", "c", 1)

	done := make(chan error, 1)
	go func() { done <- src.Run(context.Background()) }()

	deadline := time.After(time.Second)
	for {
		broker.mu.Lock()
		ready := broker.onDisconnect != nil && len(broker.handlers) == 2
		broker.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("source never finished setup")
		case <-time.After(5 * time.Millisecond):
		}
	}

	broker.dropConnection(errors.New("EOF"))

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run() returned nil after disconnect")
		}
		if Classify(err).Kind != FailureTransient {
			t.Errorf("disconnect classified as %v, want transient", Classify(err).Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after disconnect")
	}
}

func TestMQTTSource_MalformedGiftIsRejected(t *testing.T) {
	broker := newMockBroker()
	src := NewMQTTSource(broker, "g", "c", 1)
	src.OnGift(func(Event) { t.Error("handler called for malformed payload") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Run(ctx) }()

	deadline := time.After(time.Second)
	for {
		broker.mu.Lock()
		ready := len(broker.handlers) == 2
		broker.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscriptions never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := broker.deliver("g", []byte(`not json`)); err == nil {
		t.Error("expected decode error for malformed payload")
	}
	if err := broker.deliver("g", []byte(`{"count":3}`)); err == nil {
		t.Error("expected error for gift without category")
	}
}

func TestMQTTSource_NotConnected(t *testing.T) {
	broker := newMockBroker()
	broker.connected = false
	src := NewMQTTSource(broker, "g", "c", 1)

	if err := src.Run(context.Background()); err == nil {
		t.Error("Run() = nil for disconnected broker, want error")
	}
}
