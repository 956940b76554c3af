package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gift-relay-core/internal/dispatch"
	"github.com/nerrad567/gift-relay-core/internal/policy"
	"github.com/nerrad567/gift-relay-core/internal/stats"
)

const (
	defaultCommandLimit = 50
	maxCommandLimit     = 200
)

// CommandEntry is one row of the command log.
type CommandEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Actor     string    `json:"actor"`
	Category  string    `json:"category"`
	Score     int       `json:"score"`
	Action    string    `json:"action"`
	Duration  int       `json:"duration"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

// Logger defines the logging interface for the history store.
type Logger interface {
	Warn(msg string, args ...any)
}

// Store persists command activity for one session.
type Store struct {
	db        *sql.DB
	sessionID string
	logger    Logger
}

// NewStore creates a Store writing under the given session ID.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//   - sessionID: Session all recorded commands belong to
//   - logger: Structured logger (required)
func NewStore(db *sql.DB, sessionID string, logger Logger) *Store {
	return &Store{db: db, sessionID: sessionID, logger: logger}
}

// RecordCommand inserts a command log row.
func (s *Store) RecordCommand(ctx context.Context, entry CommandEntry) error {
	if entry.Actor == "" {
		return fmt.Errorf("actor is required")
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO command_log (session_id, actor, category, score, action, duration, delivered, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.sessionID,
		entry.Actor,
		entry.Category,
		entry.Score,
		entry.Action,
		entry.Duration,
		boolToInt(entry.Delivered),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command log: %w", err)
	}

	return nil
}

// RecentCommands returns recent command log rows for this session,
// ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 200)
func (s *Store) RecentCommands(ctx context.Context, limit int) ([]CommandEntry, error) {
	if limit <= 0 {
		limit = defaultCommandLimit
	}
	if limit > maxCommandLimit {
		limit = maxCommandLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, actor, category, score, action, duration, delivered, created_at
		 FROM command_log
		 WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		s.sessionID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command log: %w", err)
	}
	defer rows.Close()

	entries := make([]CommandEntry, 0, limit)
	for rows.Next() {
		var entry CommandEntry
		var delivered int
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Actor, &entry.Category,
			&entry.Score, &entry.Action, &entry.Duration, &delivered, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command log: %w", err)
		}

		entry.Delivered = delivered != 0
		entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command log: %w", err)
	}
	return entries, nil
}

// SaveSessionSummary persists the final statistics snapshot.
//
// The row is keyed by session ID, so saving twice overwrites the
// earlier summary.
func (s *Store) SaveSessionSummary(ctx context.Context, snap stats.Snapshot) error {
	categories, err := json.Marshal(snap.UnitsByCategory)
	if err != nil {
		return fmt.Errorf("marshalling categories: %w", err)
	}
	actors, err := json.Marshal(snap.ScoreByActor)
	if err != nil {
		return fmt.Errorf("marshalling actors: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_summary (session_id, started_at, ended_at, total_units, total_score, attempted, succeeded, categories, actors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   ended_at = excluded.ended_at,
		   total_units = excluded.total_units,
		   total_score = excluded.total_score,
		   attempted = excluded.attempted,
		   succeeded = excluded.succeeded,
		   categories = excluded.categories,
		   actors = excluded.actors`,
		snap.ID,
		snap.StartedAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		snap.TotalUnits,
		snap.TotalScore,
		snap.CommandsAttempted,
		snap.CommandsSucceeded,
		string(categories),
		string(actors),
	)
	if err != nil {
		return fmt.Errorf("inserting session summary: %w", err)
	}

	return nil
}

// Recorder returns a dispatch observer that logs every delivery attempt
// to the command log. Database errors are logged and swallowed so the
// dispatch path never stalls on history.
func (s *Store) Recorder() dispatch.Observer {
	return &commandRecorder{store: s}
}

type commandRecorder struct {
	store *Store
}

func (r *commandRecorder) CommandDispatched(ctx context.Context, ev dispatch.Event, score int, cmd policy.Command, delivered bool) {
	err := r.store.RecordCommand(ctx, CommandEntry{
		Actor:     ev.Actor,
		Category:  ev.Category,
		Score:     score,
		Action:    string(cmd.Action),
		Duration:  cmd.Duration,
		Delivered: delivered,
	})
	if err != nil {
		r.store.logger.Warn("failed to record command", "actor", ev.Actor, "error", err)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
