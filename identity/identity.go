// Package identity produces message identifiers and creation timestamps for
// the conversation log.
package identity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator supplies fresh message identifiers and the current instant.
// Identifiers carry no ordering guarantee; append order is the only logical
// order of a conversation.
type Generator interface {
	NewID() string
	Now() time.Time
}

type uuidGenerator struct{}

// Default returns a Generator backed by UUIDv7 identifiers and the wall clock.
func Default() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func (uuidGenerator) Now() time.Time {
	return time.Now()
}

// NewSessionID returns a fresh identifier for a conversation.
func NewSessionID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequence is a deterministic Generator. IDs are prefix-1, prefix-2, ...
// and the clock starts at Start, advancing by Step on every Now call.
type Sequence struct {
	Prefix string
	Start  time.Time
	Step   time.Duration

	mu    sync.Mutex
	ids   int
	ticks int
}

// NewSequence creates a Sequence with the given prefix and a clock fixed at
// start. Set Step to make successive timestamps advance.
func NewSequence(prefix string, start time.Time) *Sequence {
	return &Sequence{Prefix: prefix, Start: start}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids++
	return fmt.Sprintf("%s-%d", s.Prefix, s.ids)
}

func (s *Sequence) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.Start.Add(time.Duration(s.ticks) * s.Step)
	s.ticks++
	return t
}
