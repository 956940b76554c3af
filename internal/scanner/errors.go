package scanner

import "errors"

// Sentinel errors for the scanner package.
var (
	// ErrNoLocalAddress is returned when the local interface address
	// cannot be determined or is not an IPv4 dotted quad.
	ErrNoLocalAddress = errors.New("scanner: cannot determine local address")

	// ErrNoSelection is returned when selection input ends before a
	// valid choice is made.
	ErrNoSelection = errors.New("scanner: no device selected")

	// ErrManualEntry is returned by Select when the operator chooses
	// manual address entry (sentinel choice 0).
	ErrManualEntry = errors.New("scanner: manual entry requested")
)
