package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/gift-relay-core/internal/dispatch"
	"github.com/nerrad567/gift-relay-core/internal/policy"
)

// Logger defines the logging interface for telemetry observers.
type Logger interface {
	Warn(msg string, args ...any)
}

// Publisher is the narrow MQTT surface the command mirror needs.
// The infrastructure mqtt.Client satisfies this.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// commandMessage is the JSON payload mirrored onto the command topic.
type commandMessage struct {
	Actor     string    `json:"actor"`
	Category  string    `json:"category"`
	Score     int       `json:"score"`
	Action    string    `json:"action"`
	Duration  int       `json:"duration"`
	Delivered bool      `json:"delivered"`
	Timestamp time.Time `json:"timestamp"`
}

// CommandPublisher mirrors dispatched commands onto an MQTT topic so
// external dashboards can follow relay activity live.
type CommandPublisher struct {
	publisher Publisher
	topic     string
	qos       byte
	logger    Logger
}

// NewCommandPublisher creates a publisher mirroring to the given topic.
func NewCommandPublisher(publisher Publisher, topic string, qos byte, logger Logger) *CommandPublisher {
	return &CommandPublisher{
		publisher: publisher,
		topic:     topic,
		qos:       qos,
		logger:    logger,
	}
}

// CommandDispatched implements dispatch.Observer.
func (p *CommandPublisher) CommandDispatched(_ context.Context, ev dispatch.Event, score int, cmd policy.Command, delivered bool) {
	msg := commandMessage{
		Actor:     ev.Actor,
		Category:  ev.Category,
		Score:     score,
		Action:    string(cmd.Action),
		Duration:  cmd.Duration,
		Delivered: delivered,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("failed to encode command message", "error", err)
		return
	}

	if err := p.publisher.Publish(p.topic, payload, p.qos, false); err != nil {
		p.logger.Warn("failed to mirror command", "topic", p.topic, "error", err)
	}
}

// MetricsWriter is the narrow InfluxDB surface the metrics observer
// needs. The infrastructure influxdb.Client satisfies this.
type MetricsWriter interface {
	WriteGiftMetric(category, actor string, magnitude, weight, score int)
	WriteCommandMetric(action string, duration int, delivered bool)
}

// MetricsObserver records gift and command telemetry per dispatched
// event. Writes are non-blocking inside the InfluxDB client.
type MetricsObserver struct {
	writer MetricsWriter
}

// NewMetricsObserver creates a metrics observer.
func NewMetricsObserver(writer MetricsWriter) *MetricsObserver {
	return &MetricsObserver{writer: writer}
}

// CommandDispatched implements dispatch.Observer.
func (m *MetricsObserver) CommandDispatched(_ context.Context, ev dispatch.Event, score int, cmd policy.Command, delivered bool) {
	// The dispatcher scores non-positive magnitudes as a single unit,
	// so the metric reports the same effective magnitude.
	magnitude := ev.Magnitude
	if magnitude < 1 {
		magnitude = 1
	}
	weight := score / magnitude

	m.writer.WriteGiftMetric(ev.Category, ev.Actor, magnitude, weight, score)
	m.writer.WriteCommandMetric(string(cmd.Action), cmd.Duration, delivered)
}
