// Package api implements the HTTP status API for Gift Relay Core.
//
// This package provides:
//   - GET /api/v1/health: liveness plus the stream supervisor state
//   - GET /api/v1/stats: a snapshot of the running session statistics
//   - GET /api/v1/commands/recent: recently dispatched relay commands
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Architecture
//
// The API server is read-only. It sits beside the dispatch pipeline and
// observes it through the shared session statistics and the command
// history store. It never issues relay commands itself, so a slow or
// misbehaving HTTP client cannot affect gift delivery.
//
// # Graceful Degradation
//
// The server operates without the history store. Stats and health remain
// available and the recent-commands endpoint reports unavailable.
package api
