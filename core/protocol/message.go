// Package protocol defines the conversation data model shared by the client
// and the agent service.
package protocol

import (
	"fmt"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAgent
}

// Message is a single entry in a conversation. Messages are values: once
// created they are never mutated. Timestamp is used for display only; the
// position in the conversation is the logical order.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// String renders the message as a single transcript line.
func (m Message) String() string {
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04"), m.Role, m.Content)
}
