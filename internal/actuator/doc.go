// Package actuator delivers relay commands to the ESP32 controller.
//
// The controller exposes a minimal HTTP contract: GET / for presence
// probing and POST /gift accepting a JSON command payload. Delivery is
// fire-and-forget per command: a failed POST is logged, counted as a
// failed attempt, and never retried; the next event's command is
// independent.
//
// Failures never propagate past this boundary as errors; Send returns a
// boolean and logs a human-readable diagnostic, matching the system's
// taxonomy where a delivery failure is a non-fatal, always-reported
// condition.
package actuator
