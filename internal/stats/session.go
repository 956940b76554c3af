package stats

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-run statistics accumulator.
//
// Create with NewSession. All methods are safe for concurrent use, though
// the dispatcher processes events sequentially so in practice there is one
// writer at a time.
type Session struct {
	mu sync.Mutex

	id        string
	startedAt time.Time

	totalUnits        int
	totalScore        int
	commandsAttempted int
	commandsSucceeded int

	uniqueActors    map[string]struct{}
	scoreByActor    map[string]int
	unitsByCategory map[string]int
}

// Snapshot is an immutable copy of the session counters.
//
// Maps are deep-copied; mutating a snapshot does not affect the session.
type Snapshot struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`

	TotalUnits        int `json:"total_units"`
	TotalScore        int `json:"total_score"`
	CommandsAttempted int `json:"commands_attempted"`
	CommandsSucceeded int `json:"commands_succeeded"`

	UniqueActors    []string       `json:"unique_actors"`
	ScoreByActor    map[string]int `json:"score_by_actor"`
	UnitsByCategory map[string]int `json:"units_by_category"`
}

// NewSession creates an empty session accumulator.
//
// The session ID is a fresh UUID and the start time is recorded in UTC.
func NewSession() *Session {
	return &Session{
		id:              uuid.NewString(),
		startedAt:       time.Now().UTC(),
		uniqueActors:    make(map[string]struct{}),
		scoreByActor:    make(map[string]int),
		unitsByCategory: make(map[string]int),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns the session start time (UTC).
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// RecordGift records a scored gift event.
//
// Parameters:
//   - category: Gift category name (must be present in the weight table;
//     unknown categories are never recorded)
//   - weight: Weight of the category from the table
//   - magnitude: Repeat count of the gift (minimum 1)
//   - actor: Display name of the sender
func (s *Session) RecordGift(category string, weight, magnitude int, actor string) {
	if magnitude < 1 {
		magnitude = 1
	}
	score := weight * magnitude

	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalUnits += magnitude
	s.totalScore += score
	s.uniqueActors[actor] = struct{}{}
	s.scoreByActor[actor] += score
	s.unitsByCategory[category] += magnitude
}

// RecordAttempt records a command delivery attempt.
//
// Every attempt increments CommandsAttempted; successful attempts also
// increment CommandsSucceeded, preserving attempted >= succeeded.
func (s *Session) RecordAttempt(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commandsAttempted++
	if ok {
		s.commandsSucceeded++
	}
}

// Snapshot returns an isolated copy of the current counters.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	actors := make([]string, 0, len(s.uniqueActors))
	for actor := range s.uniqueActors {
		actors = append(actors, actor)
	}

	scoreByActor := make(map[string]int, len(s.scoreByActor))
	for actor, score := range s.scoreByActor {
		scoreByActor[actor] = score
	}

	unitsByCategory := make(map[string]int, len(s.unitsByCategory))
	for category, units := range s.unitsByCategory {
		unitsByCategory[category] = units
	}

	return Snapshot{
		ID:                s.id,
		StartedAt:         s.startedAt,
		TotalUnits:        s.totalUnits,
		TotalScore:        s.totalScore,
		CommandsAttempted: s.commandsAttempted,
		CommandsSucceeded: s.commandsSucceeded,
		UniqueActors:      actors,
		ScoreByActor:      scoreByActor,
		UnitsByCategory:   unitsByCategory,
	}
}

// Duration returns how long the snapshot's session had been running at the
// given time. Helper for shutdown reporting.
func (snap Snapshot) Duration(now time.Time) time.Duration {
	return now.Sub(snap.StartedAt)
}
