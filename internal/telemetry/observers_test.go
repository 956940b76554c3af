package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nerrad567/gift-relay-core/internal/dispatch"
	"github.com/nerrad567/gift-relay-core/internal/policy"
)

type mockPublisher struct {
	topics   []string
	payloads [][]byte
	err      error
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if m.err != nil {
		return m.err
	}
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, payload)
	return nil
}

type mockLogger struct {
	warnings int
}

func (l *mockLogger) Warn(string, ...any) { l.warnings++ }

func TestCommandPublisher_MirrorsCommand(t *testing.T) {
	pub := &mockPublisher{}
	observer := NewCommandPublisher(pub, "giftrelay/command/sent", 1, &mockLogger{})

	observer.CommandDispatched(context.Background(),
		dispatch.Event{Category: "Rose", Magnitude: 5, Actor: "alice"},
		5,
		policy.Command{Action: policy.ActionAll, Duration: 2},
		true,
	)

	if len(pub.payloads) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.payloads))
	}
	if pub.topics[0] != "giftrelay/command/sent" {
		t.Errorf("topic = %q, want %q", pub.topics[0], "giftrelay/command/sent")
	}

	var msg commandMessage
	if err := json.Unmarshal(pub.payloads[0], &msg); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if msg.Actor != "alice" || msg.Category != "Rose" || msg.Score != 5 {
		t.Errorf("message = %+v, want alice/Rose/5", msg)
	}
	if msg.Action != string(policy.ActionAll) || msg.Duration != 2 {
		t.Errorf("message action/duration = %s/%d, want %s/2", msg.Action, msg.Duration, policy.ActionAll)
	}
	if !msg.Delivered {
		t.Error("message should be marked delivered")
	}
	if msg.Timestamp.IsZero() {
		t.Error("message timestamp should be set")
	}
}

func TestCommandPublisher_LogsPublishFailure(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker gone")}
	logger := &mockLogger{}
	observer := NewCommandPublisher(pub, "giftrelay/command/sent", 1, logger)

	// Must not panic or propagate the error.
	observer.CommandDispatched(context.Background(),
		dispatch.Event{Category: "Rose", Magnitude: 1, Actor: "alice"},
		1,
		policy.Command{Action: policy.ActionPrimary, Duration: 1},
		false,
	)

	if logger.warnings != 1 {
		t.Errorf("warnings = %d, want 1", logger.warnings)
	}
}

type mockMetricsWriter struct {
	gifts    int
	commands int

	lastCategory  string
	lastMagnitude int
	lastWeight    int
	lastScore     int
	lastAction    string
}

func (m *mockMetricsWriter) WriteGiftMetric(category, actor string, magnitude, weight, score int) {
	m.gifts++
	m.lastCategory = category
	m.lastMagnitude = magnitude
	m.lastWeight = weight
	m.lastScore = score
}

func (m *mockMetricsWriter) WriteCommandMetric(action string, duration int, delivered bool) {
	m.commands++
	m.lastAction = action
}

func TestMetricsObserver_WritesBothMeasurements(t *testing.T) {
	writer := &mockMetricsWriter{}
	observer := NewMetricsObserver(writer)

	observer.CommandDispatched(context.Background(),
		dispatch.Event{Category: "Galaxy", Magnitude: 2, Actor: "bob"},
		400,
		policy.Command{Action: policy.ActionSecondary, Duration: 5},
		true,
	)

	if writer.gifts != 1 || writer.commands != 1 {
		t.Fatalf("writes gifts/commands = %d/%d, want 1/1", writer.gifts, writer.commands)
	}
	if writer.lastCategory != "Galaxy" || writer.lastScore != 400 {
		t.Errorf("gift metric = %s/%d, want Galaxy/400", writer.lastCategory, writer.lastScore)
	}
	// Per-unit weight is recovered from score and magnitude.
	if writer.lastWeight != 200 {
		t.Errorf("weight = %d, want 200", writer.lastWeight)
	}
	if writer.lastAction != string(policy.ActionSecondary) {
		t.Errorf("command action = %q, want %q", writer.lastAction, policy.ActionSecondary)
	}
}

func TestMetricsObserver_ZeroMagnitudeTreatedAsSingleUnit(t *testing.T) {
	writer := &mockMetricsWriter{}
	observer := NewMetricsObserver(writer)

	// The dispatcher scores a zero magnitude as one unit; the metric
	// must not divide by the raw value and report zeroes.
	observer.CommandDispatched(context.Background(),
		dispatch.Event{Category: "Rose", Magnitude: 0, Actor: "alice"},
		1,
		policy.Command{Action: policy.ActionPrimary, Duration: 1},
		true,
	)

	if writer.lastMagnitude != 1 {
		t.Errorf("magnitude = %d, want 1", writer.lastMagnitude)
	}
	if writer.lastWeight != 1 {
		t.Errorf("weight = %d, want 1", writer.lastWeight)
	}
	if writer.lastScore != 1 {
		t.Errorf("score = %d, want 1", writer.lastScore)
	}
}
