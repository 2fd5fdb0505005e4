package agentd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tailored-agentic-units/supportchat/core/config"
)

// Environment variables read by LoadEnv.
const (
	EnvAddr           = "AGENTD_ADDR"
	EnvAllowedOrigins = "AGENTD_ALLOWED_ORIGINS"
	EnvRedisURL       = "AGENTD_REDIS_URL"
	EnvOllamaURL      = "AGENTD_OLLAMA_URL"
	EnvModel          = "AGENTD_MODEL"
	EnvHistoryTTL     = "AGENTD_HISTORY_TTL"
	EnvHistoryWindow  = "AGENTD_HISTORY_WINDOW"
	EnvHistoryDir     = "AGENTD_HISTORY_DIR"
)

const (
	defaultAddr             = ":8000"
	defaultHistoryTTL       = 24 * time.Hour
	defaultHistoryWindow    = 3
	defaultHistoryMax       = 50
	defaultMaxBodyBytes     = 64 << 10
	defaultResponderTimeout = 60 * time.Second
	defaultAssistantName    = "Ayesha"
	defaultServiceName      = "Ayesha's Shopping Assistant"
	defaultWelcome          = "Welcome to Ayesha's Shopping Store API"

	// DefaultFallbackReply is returned, with status 200, when a reply could
	// not be generated.
	DefaultFallbackReply = "I'm having some technical difficulties. Please email support@ayeshastore.com for immediate assistance."
)

// Config holds the agent service settings.
type Config struct {
	Addr           string   `json:"addr,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// RedisURL selects the redis history backend. Otherwise HistoryDir
	// selects the file backend, and with neither set history is kept in
	// process memory.
	RedisURL   string `json:"redis_url,omitempty"`
	HistoryDir string `json:"history_dir,omitempty"`

	// OllamaURL and Model select the language model responder; when either
	// is empty replies come from the catalog responder.
	OllamaURL string `json:"ollama_url,omitempty"`
	Model     string `json:"model,omitempty"`

	HistoryTTL       config.Duration `json:"history_ttl,omitempty"`
	HistoryWindow    int             `json:"history_window,omitempty"`
	HistoryMax       int             `json:"history_max,omitempty"`
	MaxBodyBytes     int64           `json:"max_body_bytes,omitempty"`
	ResponderTimeout config.Duration `json:"responder_timeout,omitempty"`

	AssistantName string `json:"assistant_name,omitempty"`
	ServiceName   string `json:"service_name,omitempty"`
	Welcome       string `json:"welcome,omitempty"`
	FallbackReply string `json:"fallback_reply,omitempty"`
}

// DefaultConfig returns the configuration of a local development service.
func DefaultConfig() Config {
	return Config{
		Addr: defaultAddr,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"https://ai-support-agent.vercel.app",
		},
		HistoryTTL:       config.Duration(defaultHistoryTTL),
		HistoryWindow:    defaultHistoryWindow,
		HistoryMax:       defaultHistoryMax,
		MaxBodyBytes:     defaultMaxBodyBytes,
		ResponderTimeout: config.Duration(defaultResponderTimeout),
		AssistantName:    defaultAssistantName,
		ServiceName:      defaultServiceName,
		Welcome:          defaultWelcome,
		FallbackReply:    DefaultFallbackReply,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if len(source.AllowedOrigins) > 0 {
		c.AllowedOrigins = source.AllowedOrigins
	}
	if source.RedisURL != "" {
		c.RedisURL = source.RedisURL
	}
	if source.HistoryDir != "" {
		c.HistoryDir = source.HistoryDir
	}
	if source.OllamaURL != "" {
		c.OllamaURL = source.OllamaURL
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.HistoryTTL > 0 {
		c.HistoryTTL = source.HistoryTTL
	}
	if source.HistoryWindow > 0 {
		c.HistoryWindow = source.HistoryWindow
	}
	if source.HistoryMax > 0 {
		c.HistoryMax = source.HistoryMax
	}
	if source.MaxBodyBytes > 0 {
		c.MaxBodyBytes = source.MaxBodyBytes
	}
	if source.ResponderTimeout > 0 {
		c.ResponderTimeout = source.ResponderTimeout
	}
	if source.AssistantName != "" {
		c.AssistantName = source.AssistantName
	}
	if source.ServiceName != "" {
		c.ServiceName = source.ServiceName
	}
	if source.Welcome != "" {
		c.Welcome = source.Welcome
	}
	if source.FallbackReply != "" {
		c.FallbackReply = source.FallbackReply
	}
}

// LoadEnv returns the default configuration overlaid with AGENTD_* values
// from the process environment and the given dotenv files.
func LoadEnv(files ...string) (*Config, error) {
	env, err := config.LoadEnv(files...)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	overlay := Config{
		Addr:           env.Get(EnvAddr),
		AllowedOrigins: env.List(EnvAllowedOrigins),
		RedisURL:       env.Get(EnvRedisURL),
		HistoryDir:     env.Get(EnvHistoryDir),
		OllamaURL:      env.Get(EnvOllamaURL),
		Model:          env.Get(EnvModel),
	}

	if v := env.Get(EnvHistoryTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvHistoryTTL, v)
		}
		overlay.HistoryTTL = config.Duration(d)
	}
	if v := env.Get(EnvHistoryWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvHistoryWindow, v)
		}
		overlay.HistoryWindow = n
	}

	cfg.Merge(&overlay)
	return &cfg, nil
}
