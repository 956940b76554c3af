// Package stream is the boundary to the upstream live-event feed.
//
// The feed itself is an external collaborator: something that connects,
// delivers gift notifications in arrival order, and eventually ends or
// errors. This package owns two things at that boundary:
//
//   - the Source contract the supervisor runs (Run blocks until the
//     stream ends; handlers are delivered synchronously in order), and
//   - failure classification: the external libraries behind a feed do not
//     expose structured error codes, so free-text errors are pattern
//     matched ONCE here into a closed tagged variant (rate-limited,
//     terminal, transient, canceled). The supervisor's state machine
//     dispatches only on the variant, never on raw text.
//
// MQTTSource is the shipped implementation: an external feed connector
// publishes gift notifications to the broker and this adapter consumes
// them, turning broker disconnects into stream failures.
package stream
