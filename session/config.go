package session

import "github.com/tailored-agentic-units/supportchat/identity"

// Config holds session initialization parameters.
type Config struct {
	// ID pins the conversation identifier. Empty generates a fresh UUIDv7 per
	// session.
	ID string `json:"id,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.ID != "" {
		c.ID = source.ID
	}
}

// New creates a Store from configuration and starts it empty.
func New(cfg *Config, gen identity.Generator) (Store, error) {
	s := NewMemoryStore(cfg.ID, gen)
	s.Clear()
	return s, nil
}
