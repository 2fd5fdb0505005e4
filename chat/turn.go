package chat

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/supportchat/core/protocol"
)

// Outcome is the result of one turn.
type Outcome struct {
	User     protocol.Message  // the user message appended at submit
	Agent    *protocol.Message // the appended agent message; nil on failure
	Err      error             // transport or context error; nil on success
	Notice   string            // user-facing failure text; empty on success
	Duration time.Duration
}

// OK reports whether the turn produced an agent message.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Turn is the handle for one in-flight exchange. Done is closed after the
// controller has returned to StateIdle and the completion hook has run.
type Turn struct {
	user    protocol.Message
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
}

// UserMessage returns the message appended when the turn was submitted.
func (t *Turn) UserMessage() protocol.Message {
	return t.user
}

// Done returns a channel closed when the turn completes.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Cancel aborts the request. A cancelled turn completes as a failure.
func (t *Turn) Cancel() {
	t.cancel()
}

// Wait blocks until the turn completes or ctx ends. Ending ctx does not
// cancel the turn.
func (t *Turn) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Outcome returns the result without blocking. The bool is false while the
// turn is still in flight.
func (t *Turn) Outcome() (Outcome, bool) {
	select {
	case <-t.done:
		return t.outcome, true
	default:
		return Outcome{}, false
	}
}
