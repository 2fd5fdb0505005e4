// Package agentd is the reference agent service the chat client talks to.
// It answers POST /ask with a reply built from the store knowledge and the
// session's recent exchanges.
package agentd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tailored-agentic-units/supportchat/core/protocol"
	"github.com/tailored-agentic-units/supportchat/core/response"
	"github.com/tailored-agentic-units/supportchat/observability"
)

// Option configures a Server. Components not supplied are built from
// configuration.
type Option func(*Server)

// WithHistory overrides the config-selected history backend.
func WithHistory(h HistoryStore) Option {
	return func(s *Server) { s.history = h }
}

// WithResponder overrides the config-selected responder.
func WithResponder(r Responder) Option {
	return func(s *Server) { s.responder = r }
}

// WithObserver sets the observer for request and reply events. Events are
// also counted in the service metrics.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithCatalog replaces the demo order catalog.
func WithCatalog(c Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithKnowledge replaces the store knowledge text.
func WithKnowledge(k string) Option {
	return func(s *Server) { s.knowledge = k }
}

// Server is the agent service.
type Server struct {
	cfg       Config
	history   HistoryStore
	responder Responder
	catalog   Catalog
	knowledge string
	observer  observability.Observer
	metrics   *Metrics
	router    chi.Router
}

// New creates a Server from configuration. With a redis URL configured, ctx
// bounds the initial connection check.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Server, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)

	s := &Server{
		cfg:       merged,
		catalog:   DefaultCatalog(),
		knowledge: StoreKnowledge,
		metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.observer = observability.NewMultiObserver(s.observer, s.metrics)

	if s.history == nil {
		if merged.RedisURL != "" {
			h, err := NewRedisHistory(ctx, merged.RedisURL, merged.HistoryTTL.Std(), merged.HistoryMax)
			if err != nil {
				return nil, fmt.Errorf("failed to create history store: %w", err)
			}
			s.history = h
		} else if merged.HistoryDir != "" {
			h, err := NewFileHistory(merged.HistoryDir, merged.HistoryTTL.Std(), merged.HistoryMax)
			if err != nil {
				return nil, fmt.Errorf("failed to create history store: %w", err)
			}
			s.history = h
		} else {
			s.history = NewMemoryHistory(merged.HistoryTTL.Std(), merged.HistoryMax)
		}
	}

	if s.responder == nil {
		if merged.OllamaURL != "" && merged.Model != "" {
			s.responder = NewOllamaResponder(merged.OllamaURL, merged.Model, nil)
		} else {
			s.responder = CatalogResponder{Assistant: merged.AssistantName}
		}
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.metrics.Middleware)
	r.Use(maxBodySize(s.cfg.MaxBodyBytes))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.observer))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/", s.handleWelcome)
	r.Get("/health", s.handleHealth)
	r.Post("/ask", s.handleAsk)

	return r
}

// Handler returns the service's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the effective configuration.
func (s *Server) Config() Config {
	return s.cfg
}

// Close releases the history backend.
func (s *Server) Close() error {
	return s.history.Close()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.cfg.Welcome})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:  "active",
		Service: s.cfg.ServiceName,
		Checks:  map[string]string{"history": "pass"},
	}
	status := http.StatusOK

	if err := s.history.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["history"] = "fail"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message   *string `json:"message"`
		SessionID string  `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Message == nil {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	req := protocol.AskRequest{Message: *body.Message, SessionID: body.SessionID}
	sessionID := req.Session()

	reply, err := s.answer(r.Context(), sessionID, strings.TrimSpace(req.Message))
	if err != nil {
		s.metrics.reply(OutcomeFallback)
		observability.Emit(r.Context(), s.observer, EventAskFallback, observability.LevelError, "agentd.ask",
			map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		writeJSON(w, http.StatusOK, response.AskResponse{Reply: s.cfg.FallbackReply, Error: err.Error()})
		return
	}

	s.metrics.reply(OutcomeReply)
	observability.Emit(r.Context(), s.observer, EventAskReply, observability.LevelInfo, "agentd.ask",
		map[string]any{
			"session_id":   sessionID,
			"reply_length": len(reply),
		})
	writeJSON(w, http.StatusOK, response.AskResponse{Reply: reply})
}

// answer records the exchange only once a reply exists.
func (s *Server) answer(ctx context.Context, sessionID, message string) (string, error) {
	if id := DetectOrderID(message); id != "" {
		if err := s.history.SetOrder(ctx, sessionID, id); err != nil {
			return "", err
		}
		observability.Emit(ctx, s.observer, EventOrderTracked, observability.LevelVerbose, "agentd.ask",
			map[string]any{"session_id": sessionID, "order_id": id})
	}

	conv, err := s.history.Load(ctx, sessionID, s.cfg.HistoryWindow)
	if err != nil {
		return "", err
	}

	var order *Order
	if o, ok := s.catalog.Lookup(conv.OrderID); ok {
		order = &o
	}

	promptContext := BuildContext(s.knowledge, order, conv.History)
	prompt := Prompt{
		SessionID: sessionID,
		Message:   message,
		Order:     order,
		OrderID:   conv.OrderID,
		Context:   promptContext,
		Text:      BuildPrompt(s.cfg.AssistantName, promptContext, message),
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.ResponderTimeout.Std())
	defer cancel()

	reply, err := s.responder.Respond(rctx, prompt)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)

	if err := s.history.Append(ctx, sessionID, Exchange{User: message, Reply: reply}); err != nil {
		observability.Emit(ctx, s.observer, EventHistoryError, observability.LevelWarning, "agentd.ask",
			map[string]any{"session_id": sessionID, "error": err.Error()})
	}

	return reply, nil
}
