package stream

import "context"

// Event is a single gift notification from the upstream feed.
type Event struct {
	// Category is the gift's classification label, looked up in the
	// weight table.
	Category string `json:"category"`

	// Magnitude is the repeat count. Upstream may report 0; consumers
	// treat that as 1.
	Magnitude int `json:"count"`

	// Actor is the display name of the sender.
	Actor string `json:"user"`
}

// Source is a connected upstream event stream.
//
// Run blocks until the stream ends or errors. Handlers registered before
// Run are invoked synchronously in arrival order: the next notification
// is not delivered until the previous handler returns.
type Source interface {
	// Run consumes the stream until it ends, errors, or ctx is
	// cancelled. The returned error is classified by Classify.
	Run(ctx context.Context) error

	// OnConnect registers a handler for the connect notification
	// carrying the target's resolved identity.
	OnConnect(fn func(identity string))

	// OnGift registers a handler for gift notifications.
	OnGift(fn func(ev Event))
}

// Connector constructs a connected Source for a target identity.
//
// The supervisor calls this on every (re)connection attempt. Whatever
// construction-convention probing an external feed library needs happens
// inside the Connector; the supervisor never sees it.
type Connector func(ctx context.Context) (Source, error)
