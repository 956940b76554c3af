// Package dispatch turns classified gift events into relay commands.
//
// For each incoming event the dispatcher looks up the category weight,
// computes score = weight x magnitude, updates the session statistics,
// derives a command from the policy bands, and hands it to the sender.
// Unknown categories are surfaced as diagnostics naming the category so
// an operator can extend the weight table; nothing is recorded or sent
// for them.
//
// Events are processed one at a time: the upstream feed delivers
// notifications sequentially, so each event is fully handled (classify,
// score, command, send, record) before the next is considered. Delivery
// is always attempted regardless of the startup reachability probe, since
// reachability may change mid-session.
//
// Side channels (command history, MQTT publishes, time-series points) are
// best-effort and never fail the dispatch path.
package dispatch
