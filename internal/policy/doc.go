// Package policy maps gift scores to timed relay commands.
//
// The mapping is a pure function over ordered threshold bands: a score
// selects exactly one band, and each band carries a relay action and an
// activation duration in seconds. Scores below the lowest band clamp to
// it, so Decide is total over all integers.
//
// # Usage
//
//	cmd := policy.Decide(35)
//	// cmd.Action == policy.ActionAll, cmd.Duration == 3
package policy
