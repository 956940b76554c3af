package dispatch

import (
	"context"

	"github.com/nerrad567/gift-relay-core/internal/policy"
	"github.com/nerrad567/gift-relay-core/internal/stats"
	"github.com/nerrad567/gift-relay-core/internal/weights"
)

// Event is one incoming gift notification.
type Event struct {
	// Category is looked up in the weight table (case-sensitive).
	Category string

	// Magnitude is the repeat count; values below 1 are treated as 1.
	Magnitude int

	// Actor is the display name of the sender.
	Actor string
}

// Sender delivers a command to the actuator. *actuator.Sender satisfies
// this.
type Sender interface {
	Send(ctx context.Context, cmd policy.Command, actor string) bool
}

// Logger defines the logging interface for the dispatcher.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Observer receives best-effort notifications about processed events.
// Implementations must not block for long and must never panic the
// dispatch path; errors are their own concern.
type Observer interface {
	// CommandDispatched is called after every delivery attempt.
	CommandDispatched(ctx context.Context, ev Event, score int, cmd policy.Command, delivered bool)
}

// Dispatcher consumes gift events and drives the actuator.
type Dispatcher struct {
	table     weights.Table
	session   *stats.Session
	sender    Sender
	logger    Logger
	observers []Observer
}

// New creates a Dispatcher.
//
// Parameters:
//   - table: Loaded gift weight table
//   - session: Session statistics accumulator
//   - sender: Command delivery boundary
//   - logger: Structured logger (required)
//   - observers: Optional side channels (history, MQTT, telemetry)
func New(table weights.Table, session *stats.Session, sender Sender, logger Logger, observers ...Observer) *Dispatcher {
	return &Dispatcher{
		table:     table,
		session:   session,
		sender:    sender,
		logger:    logger,
		observers: observers,
	}
}

// HandleConnect logs the upstream feed's resolved target identity.
func (d *Dispatcher) HandleConnect(identity string) {
	d.logger.Info("connected to live stream", "identity", identity)
}

// HandleGift processes one gift event end to end.
//
// Unknown categories are diagnosed and skipped: no statistics are
// recorded and no command is sent. Known categories are scored, recorded,
// mapped to a command, and delivered. A failed delivery is reported by
// the sender and counted in the session statistics; it never aborts
// processing.
func (d *Dispatcher) HandleGift(ctx context.Context, ev Event) {
	weight, ok := d.table.Weight(ev.Category)
	if !ok {
		d.logger.Warn("unknown gift category, add it to the weight table",
			"category", ev.Category,
			"actor", ev.Actor,
			"magnitude", ev.Magnitude,
		)
		return
	}

	magnitude := ev.Magnitude
	if magnitude < 1 {
		magnitude = 1
	}
	score := weight * magnitude

	d.session.RecordGift(ev.Category, weight, magnitude, ev.Actor)

	cmd := policy.Decide(score)
	d.logger.Info("gift scored",
		"category", ev.Category,
		"actor", ev.Actor,
		"magnitude", magnitude,
		"weight", weight,
		"score", score,
		"relay", string(cmd.Action),
		"duration_s", cmd.Duration,
	)

	delivered := d.sender.Send(ctx, cmd, ev.Actor)

	for _, obs := range d.observers {
		obs.CommandDispatched(ctx, ev, score, cmd, delivered)
	}
}
