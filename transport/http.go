package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tailored-agentic-units/supportchat/core/protocol"
	"github.com/tailored-agentic-units/supportchat/core/response"
	"github.com/tailored-agentic-units/supportchat/observability"
)

// Transport event types.
const (
	EventRequestStart    observability.EventType = "transport.request.start"
	EventRequestComplete observability.EventType = "transport.request.complete"
	EventRequestError    observability.EventType = "transport.request.error"
)

const maxErrorBody = 256

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) { c.http = hc }
}

// WithObserver sets the observer that receives request events.
func WithObserver(o observability.Observer) HTTPOption {
	return func(c *HTTPClient) { c.observer = o }
}

// HTTPClient posts AskRequest bodies to the agent service endpoint.
type HTTPClient struct {
	cfg      Config
	http     *http.Client
	observer observability.Observer
}

// NewHTTPClient creates an HTTPClient from configuration. Deadlines come from
// the request context and cfg.Timeout; the default http.Client has none.
func NewHTTPClient(cfg *Config, opts ...HTTPOption) (*HTTPClient, error) {
	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c := &HTTPClient{
		cfg:      merged,
		http:     &http.Client{},
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the URL requests are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.cfg.Endpoint
}

// Send performs exactly one POST round trip with the given session id and text.
func (c *HTTPClient) Send(ctx context.Context, sessionID, text string) (Reply, error) {
	if c.cfg.Timeout.Enabled() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout.Std())
		defer cancel()
	}

	start := time.Now()
	observability.Emit(ctx, c.observer, EventRequestStart, observability.LevelVerbose, "transport.Send",
		map[string]any{
			"endpoint":     c.cfg.Endpoint,
			"session_id":   sessionID,
			"input_length": len(text),
		})

	reply, err := c.roundTrip(ctx, sessionID, text)
	reply.Latency = time.Since(start)

	if err != nil {
		data := map[string]any{
			"endpoint":   c.cfg.Endpoint,
			"session_id": sessionID,
			"kind":       KindOf(err).String(),
			"latency_ms": reply.Latency.Milliseconds(),
			"error":      err,
		}
		if reply.StatusCode != 0 {
			data["status"] = reply.StatusCode
		}
		observability.Emit(ctx, c.observer, EventRequestError, observability.LevelWarning, "transport.Send", data)
		return Reply{}, err
	}

	data := map[string]any{
		"endpoint":     c.cfg.Endpoint,
		"session_id":   sessionID,
		"status":       reply.StatusCode,
		"reply_length": len(reply.Content),
		"latency_ms":   reply.Latency.Milliseconds(),
	}
	level := observability.LevelVerbose
	if reply.Detail != "" {
		data["detail"] = reply.Detail
		level = observability.LevelWarning
	}
	observability.Emit(ctx, c.observer, EventRequestComplete, level, "transport.Send", data)

	return reply, nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, sessionID, text string) (Reply, error) {
	body, err := json.Marshal(protocol.AskRequest{Message: text, SessionID: sessionID})
	if err != nil {
		return Reply{}, c.fail(KindDecode, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Reply{}, c.fail(KindConnection, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Reply{}, c.fail(KindConnection, err)
	}
	defer resp.Body.Close()

	reply := Reply{StatusCode: resp.StatusCode}

	limit := c.cfg.MaxResponseBytes
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return reply, c.fail(KindConnection, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return reply, &Error{
			Kind:       KindStatus,
			Endpoint:   c.cfg.Endpoint,
			StatusCode: resp.StatusCode,
			Body:       excerpt(data),
		}
	}

	if int64(len(data)) > limit {
		return reply, c.fail(KindDecode, fmt.Errorf("response exceeds %d bytes", limit))
	}

	parsed, err := response.ParseAsk(data)
	if err != nil {
		return reply, c.fail(KindDecode, err)
	}

	reply.Content = parsed.Reply
	reply.Detail = parsed.Error
	return reply, nil
}

func (c *HTTPClient) fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Endpoint: c.cfg.Endpoint, Err: err}
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorBody {
		return s
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
