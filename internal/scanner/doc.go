// Package scanner discovers ESP32 relay controllers on the local network.
//
// The scanner determines the local /24 subnet from the routing-selected
// interface, probes every host address over HTTP with a bounded worker
// pool, and classifies responders by a fixed indicator vocabulary. Matched
// candidates are partitioned ahead of unmatched ones so the operator menu
// lists likely devices first.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                        Scanner                           │
//	│                                                          │
//	│  LocalSubnet()  ──▶  Scan()  ──▶  stable partition       │
//	│                       │                                  │
//	│                       ▼                                  │
//	│          bounded worker pool (default 50)                │
//	│                       │                                  │
//	│                       ▼                                  │
//	│        Probe() per host, own 2s timeout each             │
//	└──────────────────────────────────────────────────────────┘
//
// A probe that times out or fails to connect is a normal negative outcome,
// not an error: the address is simply absent from the result. One probe's
// failure never blocks or cancels another.
//
// # Selection
//
// Select presents the partitioned result and accepts a 1-based index or 0
// for manual address entry, re-prompting on invalid input. The chosen
// address can be handed to a launching wrapper through a one-line handoff
// file (WriteHandoff / ConsumeHandoff).
package scanner
