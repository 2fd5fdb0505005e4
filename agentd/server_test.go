package agentd_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/supportchat/agentd"
	"github.com/tailored-agentic-units/supportchat/core/protocol"
	"github.com/tailored-agentic-units/supportchat/core/response"
	"github.com/tailored-agentic-units/supportchat/observability"
)

type recordingResponder struct {
	mu      sync.Mutex
	prompts []agentd.Prompt
	reply   string
	err     error
}

func (r *recordingResponder) Respond(ctx context.Context, p agentd.Prompt) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, p)
	return r.reply, r.err
}

func (r *recordingResponder) last() agentd.Prompt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompts[len(r.prompts)-1]
}

type failingHistory struct {
	*agentd.MemoryHistory
	appendErr error
	pingErr   error
}

func (h failingHistory) Append(ctx context.Context, sessionID string, ex agentd.Exchange) error {
	if h.appendErr != nil {
		return h.appendErr
	}
	return h.MemoryHistory.Append(ctx, sessionID, ex)
}

func (h failingHistory) Ping(ctx context.Context) error { return h.pingErr }

func newServer(t *testing.T, opts ...agentd.Option) *agentd.Server {
	t.Helper()
	srv, err := agentd.New(context.Background(), &agentd.Config{}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ask(t *testing.T, h http.Handler, body string) response.AskResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/ask", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var out response.AskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return out
}

func TestAsk_OrderStatus(t *testing.T) {
	srv := newServer(t)

	out := ask(t, srv.Handler(), `{"message":"Where is my order ord123?","session_id":"s1"}`)

	if !strings.Contains(out.Reply, "ORD123") || !strings.Contains(out.Reply, "shipped") {
		t.Errorf("got reply %q, want ORD123 shipped status", out.Reply)
	}
	if out.Error != "" {
		t.Errorf("got error %q, want none", out.Error)
	}
}

func TestAsk_OrderTrackedAcrossTurns(t *testing.T) {
	history := agentd.NewMemoryHistory(0, 0)
	srv := newServer(t, agentd.WithHistory(history))
	h := srv.Handler()

	ask(t, h, `{"message":"I have a question about ORD456","session_id":"s1"}`)
	out := ask(t, h, `{"message":"When will my order arrive?","session_id":"s1"}`)

	if !strings.Contains(out.Reply, "ORD456") || !strings.Contains(out.Reply, "Est. June 25, 2025") {
		t.Errorf("got reply %q, want tracked ORD456", out.Reply)
	}

	other := ask(t, h, `{"message":"When will my order arrive?","session_id":"s2"}`)
	if strings.Contains(other.Reply, "ORD456") {
		t.Errorf("order leaked into another session: %q", other.Reply)
	}

	conv, err := history.Load(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if conv.OrderID != "ORD456" {
		t.Errorf("got order %q, want ORD456", conv.OrderID)
	}
	if len(conv.History) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(conv.History))
	}
	if conv.History[1].User != "When will my order arrive?" {
		t.Errorf("got user %q", conv.History[1].User)
	}
	if conv.History[0].ID == "" || conv.History[0].At.IsZero() {
		t.Error("exchange was not stamped")
	}
}

func TestAsk_UnknownOrder(t *testing.T) {
	srv := newServer(t)

	out := ask(t, srv.Handler(), `{"message":"status of order ORD999 please"}`)

	if !strings.Contains(out.Reply, "couldn't find order ORD999") {
		t.Errorf("got reply %q", out.Reply)
	}
}

func TestAsk_DefaultSession(t *testing.T) {
	history := agentd.NewMemoryHistory(0, 0)
	srv := newServer(t, agentd.WithHistory(history))

	ask(t, srv.Handler(), `{"message":"hello"}`)

	conv, _ := history.Load(context.Background(), protocol.DefaultSessionID, 0)
	if len(conv.History) != 1 {
		t.Errorf("got %d exchanges in default session, want 1", len(conv.History))
	}
}

func TestAsk_PromptContext(t *testing.T) {
	responder := &recordingResponder{reply: "  ok  "}
	srv := newServer(t, agentd.WithResponder(responder))
	h := srv.Handler()

	for _, msg := range []string{"one", "two", "three", "four", "ORD123 five"} {
		out := ask(t, h, `{"message":"`+msg+`","session_id":"ctx"}`)
		if out.Reply != "ok" {
			t.Fatalf("got reply %q, want trimmed ok", out.Reply)
		}
	}

	p := responder.last()
	if p.SessionID != "ctx" || p.Message != "ORD123 five" {
		t.Errorf("got prompt session %q message %q", p.SessionID, p.Message)
	}
	if p.Order == nil || p.Order.ID != "ORD123" {
		t.Errorf("got order %+v, want ORD123", p.Order)
	}
	if strings.Contains(p.Context, "Customer: one") {
		t.Error("context includes an exchange outside the window")
	}
	for _, want := range []string{"Customer: two", "Customer: three", "Customer: four", "Current Order: ORD123", "Ayesha's Shopping Store"} {
		if !strings.Contains(p.Context, want) {
			t.Errorf("context missing %q", want)
		}
	}
	if !strings.Contains(p.Text, "CUSTOMER MESSAGE: ORD123 five") {
		t.Errorf("prompt text missing customer message")
	}
}

func TestAsk_Fallback(t *testing.T) {
	history := agentd.NewMemoryHistory(0, 0)
	rec := observability.NewRecorder()
	srv := newServer(t,
		agentd.WithHistory(history),
		agentd.WithObserver(rec),
		agentd.WithResponder(&recordingResponder{err: errors.New("model offline")}),
	)

	out := ask(t, srv.Handler(), `{"message":"hi","session_id":"f"}`)

	if out.Reply != agentd.DefaultFallbackReply {
		t.Errorf("got reply %q, want fallback", out.Reply)
	}
	if out.Error != "model offline" {
		t.Errorf("got error %q", out.Error)
	}
	if rec.Count(agentd.EventAskFallback) != 1 {
		t.Errorf("got %d fallback events, want 1", rec.Count(agentd.EventAskFallback))
	}

	conv, _ := history.Load(context.Background(), "f", 0)
	if len(conv.History) != 0 {
		t.Errorf("failed exchange was recorded")
	}
}

func TestAsk_HistoryAppendFailureStillReplies(t *testing.T) {
	rec := observability.NewRecorder()
	srv := newServer(t,
		agentd.WithObserver(rec),
		agentd.WithHistory(failingHistory{
			MemoryHistory: agentd.NewMemoryHistory(0, 0),
			appendErr:     agentd.ErrHistory,
		}),
	)

	out := ask(t, srv.Handler(), `{"message":"hi"}`)

	if out.Error != "" || out.Reply == "" {
		t.Errorf("got %+v, want a normal reply", out)
	}
	if rec.Count(agentd.EventHistoryError) != 1 {
		t.Errorf("got %d history error events, want 1", rec.Count(agentd.EventHistoryError))
	}
}

func TestAsk_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "invalid json", body: `{"message":`, want: http.StatusBadRequest},
		{name: "wrong type", body: `{"message":42}`, want: http.StatusBadRequest},
		{name: "missing message", body: `{"session_id":"x"}`, want: http.StatusUnprocessableEntity},
		{name: "too large", body: `{"message":"` + strings.Repeat("a", 70<<10) + `"}`, want: http.StatusRequestEntityTooLarge},
	}

	srv := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/ask", tt.body)
			if rec.Code != tt.want {
				t.Errorf("got status %d, want %d", rec.Code, tt.want)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("got body %q, want error JSON", rec.Body.String())
			}
		})
	}
}

func TestAsk_MethodNotAllowed(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/ask", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("got status %d, want 405", rec.Code)
	}
}

func TestWelcome(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/", "")

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Welcome to Ayesha's Shopping Store API" {
		t.Errorf("got %q", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{name: "active", wantCode: http.StatusOK, wantStatus: "active"},
		{name: "degraded", pingErr: errors.New("down"), wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, agentd.WithHistory(failingHistory{
				MemoryHistory: agentd.NewMemoryHistory(0, 0),
				pingErr:       tt.pingErr,
			}))

			rec := do(t, srv.Handler(), http.MethodGet, "/health", "")

			if rec.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantCode)
			}
			var body agentd.HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("got status %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Service != "Ayesha's Shopping Assistant" {
				t.Errorf("got service %q", body.Service)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	srv := newServer(t)
	h := srv.Handler()

	ask(t, h, `{"message":"hi"}`)
	rec := do(t, h, http.MethodGet, "/metrics", "")

	body := rec.Body.String()
	for _, want := range []string{
		`agentd_replies_total{outcome="reply"} 1`,
		`agentd_http_requests_total{method="POST",route="/ask",status="200"} 1`,
		`agentd_http_request_duration_seconds_count{method="POST",route="/ask"} 1`,
		`agentd_events_total{level="INFO",type="agentd.ask.reply"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "local frontend", origin: "http://localhost:3000", want: "http://localhost:3000"},
		{name: "deployed frontend", origin: "https://ai-support-agent.vercel.app", want: "https://ai-support-agent.vercel.app"},
		{name: "other origin", origin: "https://evil.example", want: ""},
	}

	srv := newServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("got allow origin %q, want %q", got, tt.want)
			}
			if tt.want != "" && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials not allowed")
			}
		})
	}
}

func TestRequestEvents(t *testing.T) {
	rec := observability.NewRecorder()
	srv := newServer(t, agentd.WithObserver(rec))

	ask(t, srv.Handler(), `{"message":"ORD123"}`)

	for _, typ := range []observability.EventType{agentd.EventOrderTracked, agentd.EventAskReply, agentd.EventRequest} {
		if rec.Count(typ) != 1 {
			t.Errorf("got %d %s events, want 1", rec.Count(typ), typ)
		}
	}
	for _, e := range rec.Events() {
		if e.Type == agentd.EventRequest && e.Data["status"] != http.StatusOK {
			t.Errorf("got request status %v, want 200", e.Data["status"])
		}
	}

	metrics := do(t, srv.Handler(), http.MethodGet, "/metrics", "").Body.String()
	if !strings.Contains(metrics, `agentd_events_total{level="DEBUG",type="agentd.order.tracked"} 1`) {
		t.Error("events delivered to the observer were not counted in metrics")
	}
}

func TestNew_InvalidRedisURL(t *testing.T) {
	_, err := agentd.New(context.Background(), &agentd.Config{RedisURL: "ftp://nowhere"})
	if !errors.Is(err, agentd.ErrInvalidConfig) {
		t.Errorf("got %v, want ErrInvalidConfig", err)
	}
}

func TestNew_OllamaResponder(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"from the model","done":true}`))
	}))
	defer ollama.Close()

	srv := newServer(t)
	if srv.Config().OllamaURL != "" {
		t.Fatal("default config should not select ollama")
	}

	withModel, err := agentd.New(context.Background(), &agentd.Config{OllamaURL: ollama.URL, Model: "llama3"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer withModel.Close()

	out := ask(t, withModel.Handler(), `{"message":"hi"}`)
	if out.Reply != "from the model" {
		t.Errorf("got reply %q", out.Reply)
	}
}
