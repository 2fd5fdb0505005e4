// Package session holds the ordered message log of one conversation.
package session

import (
	"github.com/tailored-agentic-units/supportchat/core/protocol"
)

// Store is the append-only message log of a conversation. Append order is the
// display order. Implementations must be safe for concurrent use.
type Store interface {
	// ID returns the conversation identifier sent with every turn.
	ID() string
	// Append creates a message with a fresh id and timestamp, appends it, and
	// returns it. Content validation is the caller's responsibility.
	Append(role protocol.Role, content string) protocol.Message
	// Snapshot returns a point-in-time copy of the conversation.
	Snapshot() []protocol.Message
	// Len returns the number of messages in the conversation.
	Len() int
	// Clear resets the conversation to empty. Only used when a session starts.
	Clear()
}
