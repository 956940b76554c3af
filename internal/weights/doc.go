// Package weights provides the gift weight table for Gift Relay Core.
//
// The table maps gift category names (case-sensitive) to positive integer
// weights. It is loaded once at startup from a YAML file and is immutable
// for the lifetime of the process. A missing or malformed weight file is a
// fatal startup condition: the dispatcher cannot score events without it.
//
// # Usage
//
//	table, err := weights.Load("configs/weights.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading gift weights: %w", err)
//	}
//
//	w, ok := table.Weight("Rose")
//	if !ok {
//	    // unknown category, a valid runtime state, handled by the dispatcher
//	}
//
// # File Format
//
//	Rose: 1
//	Finger Heart: 5
//	Cow: 10
//	Lion: 500
//
// Unknown categories encountered at runtime are not errors; they are
// surfaced as diagnostics so an operator can extend the table.
package weights
