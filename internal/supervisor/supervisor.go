package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gift-relay-core/internal/stats"
	"github.com/nerrad567/gift-relay-core/internal/stream"
)

// State represents the supervisor's position in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateRunning    State = "running"
	StateBackoff    State = "backoff"
	StateTerminated State = "terminated"
)

// Default retry policy values.
const (
	// DefaultMaxRetries bounds consecutive transient reconnection attempts.
	DefaultMaxRetries = 5

	// DefaultRetryDelay is the fixed wait between transient retries.
	DefaultRetryDelay = 15 * time.Second

	// DefaultRateLimitWait is the minimum wait after upstream throttling.
	// Deliberately long: reconnecting early risks an upstream ban.
	DefaultRateLimitWait = 6 * time.Hour
)

// Config holds the supervisor retry policy.
type Config struct {
	// MaxRetries is the transient retry budget (default 5).
	MaxRetries int

	// RetryDelay is the fixed wait between transient retries (default 15s).
	RetryDelay time.Duration

	// RateLimitWait is the minimum wait after a rate-limit failure
	// (default 6h). The extracted upstream hint is honoured if larger.
	RateLimitWait time.Duration
}

// Logger defines the logging interface for the supervisor.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Supervisor drives a stream source through connect/run/retry cycles.
type Supervisor struct {
	cfg     Config
	connect stream.Connector
	session *stats.Session
	logger  Logger

	// onExit receives the final statistics snapshot on every exit path.
	onExit func(stats.Snapshot)

	mu    sync.RWMutex
	state State
}

// New creates a Supervisor.
//
// Zero values in cfg are replaced with defaults. The connect function is
// invoked for every (re)connection attempt.
func New(cfg Config, connect stream.Connector, session *stats.Session, logger Logger) *Supervisor {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.RateLimitWait <= 0 {
		cfg.RateLimitWait = DefaultRateLimitWait
	}

	return &Supervisor{
		cfg:     cfg,
		connect: connect,
		session: session,
		logger:  logger,
		state:   StateIdle,
	}
}

// SetOnExit registers the snapshot callback invoked on every exit path.
// Must be called before Run.
func (s *Supervisor) SetOnExit(fn func(stats.Snapshot)) {
	s.onExit = fn
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run executes the supervision loop until the stream terminates.
//
// The returned error is nil for clean endings (user interruption) and
// the final stream error otherwise. Terminated is absorbing: Run must
// not be called again on the same Supervisor.
func (s *Supervisor) Run(ctx context.Context) error {
	defer func() {
		s.setState(StateTerminated)
		if s.onExit != nil {
			s.onExit(s.session.Snapshot())
		}
	}()

	retries := 0

	for {
		s.setState(StateConnecting)
		s.logger.Info("connecting to upstream stream")

		var runErr error
		src, err := s.connect(ctx)
		if err != nil {
			runErr = err
		} else {
			s.setState(StateRunning)
			s.logger.Info("stream running")
			runErr = src.Run(ctx)
		}

		failure := stream.Classify(runErr)
		switch failure.Kind {
		case stream.FailureCanceled:
			s.logger.Info("stream interrupted by user")
			return nil

		case stream.FailureTerminal:
			s.logger.Warn("stream ended, not retrying", "error", runErr)
			return runErr

		case stream.FailureRateLimited:
			wait := s.cfg.RateLimitWait
			if failure.Wait > wait {
				wait = failure.Wait
			}
			s.setState(StateBackoff)
			s.logger.Error("upstream rate limit hit, waiting before exit; restart manually afterwards",
				"wait", wait,
				"error", runErr,
			)
			if !s.sleep(ctx, wait) {
				return nil
			}
			// Conservatively exhausted: no auto-retry after throttling.
			return runErr

		case stream.FailureTransient:
			retries++
			if retries >= s.cfg.MaxRetries {
				s.logger.Error("retry budget exhausted",
					"attempts", retries,
					"error", runErr,
				)
				return runErr
			}

			s.setState(StateBackoff)
			s.logger.Warn("stream failed, retrying",
				"attempt", retries,
				"max_attempts", s.cfg.MaxRetries,
				"delay", s.cfg.RetryDelay,
				"error", runErr,
			)
			if !s.sleep(ctx, s.cfg.RetryDelay) {
				return nil
			}
		}
	}
}

// sleep waits for d, returning false if the context is cancelled first.
// Cancellation during a wait is user interruption: the caller exits
// cleanly instead of completing the wait.
func (s *Supervisor) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.logger.Info("wait interrupted by user")
		return false
	case <-timer.C:
		return true
	}
}
