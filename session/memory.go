package session

import (
	"slices"
	"sync"

	"github.com/tailored-agentic-units/supportchat/core/protocol"
	"github.com/tailored-agentic-units/supportchat/identity"
)

type memoryStore struct {
	id       string
	gen      identity.Generator
	messages []protocol.Message
	mu       sync.RWMutex
}

// NewMemoryStore creates a Store backed by an in-memory slice. An empty id is
// replaced by a fresh UUIDv7; a nil generator falls back to identity.Default.
func NewMemoryStore(id string, gen identity.Generator) Store {
	if id == "" {
		id = identity.NewSessionID()
	}
	if gen == nil {
		gen = identity.Default()
	}
	return &memoryStore{id: id, gen: gen}
}

func (s *memoryStore) ID() string {
	return s.id
}

func (s *memoryStore) Append(role protocol.Role, content string) protocol.Message {
	msg := protocol.Message{
		ID:        s.gen.NewID(),
		Role:      role,
		Content:   content,
		Timestamp: s.gen.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return msg
}

func (s *memoryStore) Snapshot() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *memoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}
