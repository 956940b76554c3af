// Package stats accumulates per-session gift and command statistics.
//
// A Session is created once when the dispatcher starts and is mutated only
// on the event-processing path: the dispatcher records scored gifts and the
// command sender records delivery attempts. All mutations are short and
// serialized under an internal mutex; the mutex is never held across a
// network call.
//
// Snapshot returns an isolated copy for reporting. The supervisor emits a
// snapshot on every exit path, including user interruption.
//
// # Invariants
//
//   - CommandsAttempted >= CommandsSucceeded at all times
//   - TotalUnits equals the sum of UnitsByCategory values
//   - TotalScore equals the sum of weight x magnitude over recorded gifts
package stats
