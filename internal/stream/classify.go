package stream

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FailureKind is the closed classification of a stream failure.
type FailureKind int

const (
	// FailureTransient covers network errors, timeouts, and anything
	// unclassified. The supervisor retries these with a fixed delay.
	FailureTransient FailureKind = iota

	// FailureRateLimited indicates upstream throttling. The supervisor
	// waits out the hint and does not auto-retry.
	FailureRateLimited

	// FailureTerminal indicates a condition retrying cannot fix: target
	// user not found, not currently live, or the stream ended normally.
	FailureTerminal

	// FailureCanceled indicates user-initiated interruption. Not
	// reported as a failure.
	FailureCanceled
)

// String returns the kind name for logging.
func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureTerminal:
		return "terminal"
	case FailureCanceled:
		return "canceled"
	default:
		return "transient"
	}
}

// Failure is a classified stream failure.
type Failure struct {
	// Kind is the classification the supervisor dispatches on.
	Kind FailureKind

	// Wait is the extracted retry hint for rate-limited failures, zero
	// if the message carried none.
	Wait time.Duration

	// Err is the original error, retained for logging only.
	Err error
}

// rateLimitMarkers identify throttling in free-text errors.
var rateLimitMarkers = []string{
	"rate limit",
	"too many requests",
	"429",
	"throttl",
}

// terminalMarkers identify conditions that retrying cannot fix.
var terminalMarkers = []string{
	"user not found",
	"user_not_found",
	"not currently live",
	"isn't online",
	"is offline",
	"stream ended",
	"live has ended",
}

// retryHintPattern extracts a numeric retry hint in seconds, e.g.
// "try again in 120" or "retry after 60s".
var retryHintPattern = regexp.MustCompile(`(?:try again in|retry after|wait)\s+(\d+)`)

// Classify pattern-matches a stream error into a Failure.
//
// Classification happens exactly once, here; everything past this point
// dispatches on Failure.Kind. Nil errors and context cancellation are
// user-initiated interruption.
func Classify(err error) Failure {
	if err == nil || errors.Is(err, context.Canceled) {
		return Failure{Kind: FailureCanceled, Err: err}
	}

	text := strings.ToLower(err.Error())

	for _, marker := range rateLimitMarkers {
		if strings.Contains(text, marker) {
			return Failure{
				Kind: FailureRateLimited,
				Wait: extractRetryHint(text),
				Err:  err,
			}
		}
	}

	for _, marker := range terminalMarkers {
		if strings.Contains(text, marker) {
			return Failure{Kind: FailureTerminal, Err: err}
		}
	}

	return Failure{Kind: FailureTransient, Err: err}
}

// extractRetryHint pulls a seconds value out of a throttle message.
// Returns zero if no hint is present.
func extractRetryHint(text string) time.Duration {
	m := retryHintPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
