package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailored-agentic-units/supportchat/core/config"
	"github.com/tailored-agentic-units/supportchat/session"
	"github.com/tailored-agentic-units/supportchat/transport"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultObserver       = "slog"

	// DefaultErrorNotice is the user-facing text stored in LastError after a
	// failed turn.
	DefaultErrorNotice = "Failed to get response. Please try again."
)

// Environment variables read by ApplyEnv.
const (
	EnvEndpoint    = "CHAT_ENDPOINT"
	EnvTarget      = "CHAT_TARGET"
	EnvSessionID   = "CHAT_SESSION_ID"
	EnvTimeout     = "CHAT_TIMEOUT"
	EnvErrorNotice = "CHAT_ERROR_NOTICE"
)

// Config holds initialization parameters for the controller and the
// subsystems it builds.
type Config struct {
	Session   session.Config              `json:"session"`
	Transport transport.Config            `json:"transport"`
	Endpoints map[string]transport.Config `json:"endpoints,omitempty"`

	// Target selects an entry of Endpoints instead of Transport.
	Target string `json:"target,omitempty"`

	// RequestTimeout bounds each turn; config.Disabled removes the bound.
	RequestTimeout config.Duration `json:"request_timeout,omitempty"`
	ErrorNotice    string          `json:"error_notice,omitempty"`

	// Observer names a registered observability observer.
	Observer string `json:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Session:        session.DefaultConfig(),
		Transport:      transport.DefaultConfig(),
		RequestTimeout: config.Duration(defaultRequestTimeout),
		ErrorNotice:    DefaultErrorNotice,
		Observer:       defaultObserver,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Session.Merge(&source.Session)
	c.Transport.Merge(&source.Transport)

	if len(source.Endpoints) > 0 {
		c.Endpoints = source.Endpoints
	}
	if source.Target != "" {
		c.Target = source.Target
	}
	if source.RequestTimeout != 0 {
		c.RequestTimeout = source.RequestTimeout
	}
	if source.ErrorNotice != "" {
		c.ErrorNotice = source.ErrorNotice
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// ApplyEnv overlays CHAT_* settings onto c. A non-empty process environment
// variable wins over the given dotenv files; missing files are skipped and
// later files override earlier ones.
func (c *Config) ApplyEnv(files ...string) error {
	env, err := config.LoadEnv(files...)
	if err != nil {
		return err
	}

	if v := env.Get(EnvEndpoint); v != "" {
		c.Transport.Endpoint = v
	}
	if v := env.Get(EnvTarget); v != "" {
		c.Target = v
	}
	if v := env.Get(EnvSessionID); v != "" {
		c.Session.ID = v
	}
	if v := env.Get(EnvErrorNotice); v != "" {
		c.ErrorNotice = v
	}
	if v := env.Get(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvTimeout, v)
		}
		c.RequestTimeout = config.Duration(d)
		if d == 0 {
			c.RequestTimeout = config.Disabled
		}
	}

	return nil
}
