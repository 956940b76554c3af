package weights

import "errors"

// Sentinel errors for the weights package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, weights.ErrEmptyTable) {
//	    // handle empty weight file
//	}
var (
	// ErrEmptyTable is returned when the weight file contains no entries.
	ErrEmptyTable = errors.New("weights: table is empty")

	// ErrInvalidWeight is returned when a category has a non-positive weight.
	ErrInvalidWeight = errors.New("weights: weight must be a positive integer")
)
