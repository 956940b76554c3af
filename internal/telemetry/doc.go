// Package telemetry fans dispatched commands out to side channels.
//
// Observers implemented here hang off the dispatch path and mirror
// activity to MQTT and InfluxDB. Both are best-effort: a broker or
// database outage costs visibility, never commands.
//
//	Dispatcher ──┬── actuator (authoritative)
//	             ├── history.Store (SQLite)
//	             ├── telemetry.CommandPublisher (MQTT)
//	             └── telemetry.MetricsObserver (InfluxDB)
package telemetry
