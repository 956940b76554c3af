// Package supervisor owns the upstream stream connection lifecycle.
//
// The supervisor is a small state machine:
//
//	Idle → Connecting → Running → {Backoff, Terminated}
//
// It connects a stream source, runs it until failure, classifies the
// failure (via the stream package's closed variant), and applies the
// matching recovery policy:
//
//   - transient: fixed-delay retry, bounded by a retry budget
//   - rate-limited: wait out the throttle hint (at least the configured
//     long default), then stop; deliberately no auto-retry, the
//     operator must restart
//   - terminal: stop immediately (target not found, stream over)
//   - canceled: user interruption, stop immediately and cleanly
//
// Every wait is interruptible: context cancellation during a backoff
// transitions straight to Terminated. On every exit path the session
// statistics snapshot is emitted through the OnExit callback, so a run
// always ends with a report. Terminated is absorbing.
package supervisor
