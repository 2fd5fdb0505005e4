package agentd

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Exchange is one customer message and the reply it received.
type Exchange struct {
	ID    string    `json:"id"`
	User  string    `json:"user"`
	Reply string    `json:"reply"`
	At    time.Time `json:"at"`
}

// Conversation is the per-session state used to build prompts.
type Conversation struct {
	OrderID string
	History []Exchange
}

// HistoryStore keeps per-session conversation state.
type HistoryStore interface {
	// Load returns the tracked order and at most limit most recent exchanges,
	// oldest first. An unknown session yields an empty Conversation.
	Load(ctx context.Context, sessionID string, limit int) (Conversation, error)

	// SetOrder records the order the session is talking about.
	SetOrder(ctx context.Context, sessionID, orderID string) error

	// Append adds an exchange, assigning a ULID and timestamp when missing.
	Append(ctx context.Context, sessionID string, ex Exchange) error

	Ping(ctx context.Context) error
	Close() error
}

func stamp(ex Exchange) Exchange {
	if ex.ID == "" {
		ex.ID = ulid.Make().String()
	}
	if ex.At.IsZero() {
		ex.At = time.Now().UTC()
	}
	return ex
}

type memorySession struct {
	orderID   string
	exchanges []Exchange
	touched   time.Time
}

// MemoryHistory is an in-process HistoryStore. Sessions idle longer than the
// TTL are dropped on the next access.
type MemoryHistory struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewMemoryHistory creates a MemoryHistory keeping at most max exchanges per
// session. A zero ttl keeps sessions forever.
func NewMemoryHistory(ttl time.Duration, max int) *MemoryHistory {
	return &MemoryHistory{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

func (h *MemoryHistory) session(id string, create bool) *memorySession {
	now := h.now()
	s, ok := h.sessions[id]
	if ok && h.ttl > 0 && now.Sub(s.touched) > h.ttl {
		delete(h.sessions, id)
		s, ok = nil, false
	}
	if !ok {
		if !create {
			return nil
		}
		s = &memorySession{}
		h.sessions[id] = s
	}
	s.touched = now
	return s
}

func (h *MemoryHistory) Load(ctx context.Context, sessionID string, limit int) (Conversation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.session(sessionID, false)
	if s == nil {
		return Conversation{}, nil
	}

	history := s.exchanges
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return Conversation{OrderID: s.orderID, History: slices.Clone(history)}, nil
}

func (h *MemoryHistory) SetOrder(ctx context.Context, sessionID, orderID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.session(sessionID, true).orderID = orderID
	return nil
}

func (h *MemoryHistory) Append(ctx context.Context, sessionID string, ex Exchange) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.session(sessionID, true)
	s.exchanges = append(s.exchanges, stamp(ex))
	if h.max > 0 && len(s.exchanges) > h.max {
		s.exchanges = slices.Clone(s.exchanges[len(s.exchanges)-h.max:])
	}
	return nil
}

// Sessions returns the number of live sessions.
func (h *MemoryHistory) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *MemoryHistory) Ping(ctx context.Context) error { return nil }

func (h *MemoryHistory) Close() error { return nil }
