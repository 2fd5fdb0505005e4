// Package transport performs the request/response exchange with the remote
// agent service: one POST per turn, no retry, no caching.
package transport

import (
	"context"
	"time"
)

// Reply is the agent's answer to one turn.
type Reply struct {
	Content    string        // agent text; may be empty
	Detail     string        // server-side error note attached to a fallback reply
	StatusCode int           // HTTP status of the response
	Latency    time.Duration // round trip duration
}

// Client sends one user utterance and returns the agent's reply. Failures are
// returned as *Error.
type Client interface {
	Send(ctx context.Context, sessionID, text string) (Reply, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, sessionID, text string) (Reply, error)

func (f ClientFunc) Send(ctx context.Context, sessionID, text string) (Reply, error) {
	return f(ctx, sessionID, text)
}
