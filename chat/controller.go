// Package chat implements the session controller. It owns the conversation
// state and allows one outstanding request at a time. Each transport outcome
// becomes an appended agent message or a user-facing error notice.
//
// The controller initializes from configuration via New. Functional options
// replace any subsystem, which is how tests inject a scripted transport.
//
//	c, err := chat.New(&cfg)
//	turn, err := c.Submit(ctx, "Where is my order?")
//	outcome, err := turn.Wait(ctx)
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tailored-agentic-units/supportchat/core/protocol"
	"github.com/tailored-agentic-units/supportchat/identity"
	"github.com/tailored-agentic-units/supportchat/observability"
	"github.com/tailored-agentic-units/supportchat/session"
	"github.com/tailored-agentic-units/supportchat/transport"
)

// State is the request state of a session.
type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// CompletionHook is called once per turn after the controller is idle again.
type CompletionHook func(Outcome)

// Option configures a Controller. Subsystems not supplied by an option are
// built from configuration.
type Option func(*Controller)

// WithTransport overrides the config-created transport client.
func WithTransport(t transport.Client) Option {
	return func(c *Controller) { c.client = t }
}

// WithStore overrides the config-created message store.
func WithStore(s session.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithGenerator sets the identity generator used by the config-created store.
func WithGenerator(g identity.Generator) Option {
	return func(c *Controller) { c.gen = g }
}

// WithObserver overrides the configured observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithCompletionHook registers the function called when a turn completes.
func WithCompletionHook(h CompletionHook) Option {
	return func(c *Controller) { c.hook = h }
}

// Controller is the single-session conversation state machine. It is safe
// for concurrent use.
type Controller struct {
	store    session.Store
	client   transport.Client
	registry *transport.Registry
	gen      identity.Generator
	observer observability.Observer
	hook     CompletionHook
	timeout  time.Duration
	notice   string

	mu        sync.Mutex
	state     State
	lastError string
	current   *Turn
	turns     int
	closed    bool
	wg        sync.WaitGroup
}

// New creates a Controller from configuration.
func New(cfg *Config, opts ...Option) (*Controller, error) {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	c := &Controller{
		timeout: merged.RequestTimeout.Std(),
		notice:  merged.ErrorNotice,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.observer == nil {
		o, err := observability.GetObserver(merged.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		c.observer = o
	}

	if c.store == nil {
		store, err := session.New(&merged.Session, c.gen)
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		c.store = store
	}

	c.registry = transport.NewRegistry(c.observer)
	for name, endpointCfg := range merged.Endpoints {
		if err := c.registry.Register(name, endpointCfg); err != nil {
			return nil, fmt.Errorf("failed to register endpoint %q: %w", name, err)
		}
	}

	if c.client == nil {
		client, err := c.buildClient(&merged)
		if err != nil {
			return nil, err
		}
		c.client = client
	}

	return c, nil
}

func (c *Controller) buildClient(cfg *Config) (transport.Client, error) {
	if cfg.Target != "" {
		client, err := c.registry.Get(cfg.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to select endpoint: %w", err)
		}
		return client, nil
	}

	client, err := transport.NewHTTPClient(&cfg.Transport, transport.WithObserver(c.observer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return client, nil
}

// Registry returns the named endpoint registry built from configuration.
func (c *Controller) Registry() *transport.Registry {
	return c.registry
}

// Submit starts a turn for text. Blank text and a submit while a turn is in
// flight are rejected with ErrBlankInput and ErrBusy; neither appends nor
// sends anything. Otherwise the user message is appended with the raw text,
// LastError is cleared, and exactly one transport call starts.
//
// The turn's context derives from ctx and carries the request timeout.
func (c *Controller) Submit(ctx context.Context, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		c.rejected(ctx, ErrBlankInput)
		return nil, ErrBlankInput
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state == StateSending {
		c.mu.Unlock()
		c.rejected(ctx, ErrBusy)
		return nil, ErrBusy
	}

	user := c.store.Append(protocol.RoleUser, text)
	c.lastError = ""
	c.state = StateSending

	turnCtx, cancel := context.WithCancel(ctx)
	if c.timeout > 0 {
		turnCtx, cancel = withTimeout(turnCtx, cancel, c.timeout)
	}

	t := &Turn{
		user:   user,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.current = t
	c.wg.Add(1)
	c.mu.Unlock()

	observability.Emit(ctx, c.observer, EventTurnStart, observability.LevelInfo, "chat.Submit",
		map[string]any{
			"session_id":   c.store.ID(),
			"message_id":   user.ID,
			"input_length": len(text),
		})

	go c.run(turnCtx, t)
	return t, nil
}

func withTimeout(ctx context.Context, parent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() {
		cancel()
		parent()
	}
}

func (c *Controller) run(ctx context.Context, t *Turn) {
	defer c.wg.Done()
	defer t.cancel()

	start := time.Now()
	reply, err := c.send(ctx, t.user.Content)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	outcome := Outcome{User: t.user, Duration: time.Since(start)}

	c.mu.Lock()
	if err != nil {
		outcome.Err = err
		outcome.Notice = c.notice
		c.lastError = c.notice
	} else {
		msg := c.store.Append(protocol.RoleAgent, reply.Content)
		outcome.Agent = &msg
	}
	c.state = StateIdle
	c.current = nil
	c.turns++
	c.mu.Unlock()

	if err != nil {
		observability.Emit(ctx, c.observer, EventTurnError, observability.LevelWarning, "chat.run",
			map[string]any{
				"session_id":  c.store.ID(),
				"message_id":  t.user.ID,
				"kind":        transport.KindOf(err).String(),
				"error":       err,
				"duration_ms": outcome.Duration.Milliseconds(),
			})
	} else {
		data := map[string]any{
			"session_id":   c.store.ID(),
			"message_id":   outcome.Agent.ID,
			"reply_length": len(reply.Content),
			"duration_ms":  outcome.Duration.Milliseconds(),
		}
		if reply.Detail != "" {
			data["detail"] = reply.Detail
		}
		observability.Emit(ctx, c.observer, EventTurnComplete, observability.LevelInfo, "chat.run", data)
	}

	c.notify(ctx, outcome)

	t.outcome = outcome
	close(t.done)
}

// notify runs the completion hook. A panicking hook is reported as an event
// so the turn still completes.
func (c *Controller) notify(ctx context.Context, outcome Outcome) {
	if c.hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			observability.Emit(ctx, c.observer, EventHookPanic, observability.LevelError, "chat.run",
				map[string]any{
					"session_id": c.store.ID(),
					"message_id": outcome.User.ID,
					"panic":      fmt.Sprint(r),
				})
		}
	}()
	c.hook(outcome)
}

func (c *Controller) send(ctx context.Context, text string) (reply transport.Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTransportPanic, r)
		}
	}()
	return c.client.Send(ctx, c.store.ID(), text)
}

func (c *Controller) rejected(ctx context.Context, reason error) {
	observability.Emit(ctx, c.observer, EventSubmitRejected, observability.LevelVerbose, "chat.Submit",
		map[string]any{
			"session_id": c.store.ID(),
			"reason":     reason,
		})
}

// Cancel aborts the in-flight turn, if any, and reports whether one existed.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	t := c.current
	c.mu.Unlock()

	if t == nil {
		return false
	}
	t.Cancel()
	return true
}

// Close cancels any in-flight turn and waits for it. Later submits fail
// with ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	t := c.current
	c.mu.Unlock()

	if t != nil {
		t.Cancel()
	}
	c.wg.Wait()
	return nil
}

// State returns the current request state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a turn is in flight.
func (c *Controller) Busy() bool {
	return c.State() == StateSending
}

// LastError returns the notice left by the most recent failed turn, or ""
// once a later submit has been accepted.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Snapshot returns a copy of the conversation in append order.
func (c *Controller) Snapshot() []protocol.Message {
	return c.store.Snapshot()
}

// SessionID returns the identifier sent with every request.
func (c *Controller) SessionID() string {
	return c.store.ID()
}

// Turns returns the number of completed turns, successful or not.
func (c *Controller) Turns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turns
}
