package transport

import (
	"fmt"
	"maps"
	"net/url"
	"time"

	"github.com/tailored-agentic-units/supportchat/core/config"
)

const (
	defaultEndpoint         = "http://localhost:8000/ask"
	defaultTimeout          = 60 * time.Second
	defaultMaxResponseBytes = 1 << 20
)

// Config holds the agent endpoint and request limits.
type Config struct {
	Endpoint         string            `json:"endpoint,omitempty"`
	Timeout          config.Duration   `json:"timeout,omitempty"` // config.Disabled turns the per-request timeout off
	MaxResponseBytes int64             `json:"max_response_bytes,omitempty"`
	Headers          map[string]string `json:"headers,omitempty"`
}

// DefaultConfig returns the configuration for a locally running agent service.
func DefaultConfig() Config {
	return Config{
		Endpoint:         defaultEndpoint,
		Timeout:          config.Duration(defaultTimeout),
		MaxResponseBytes: defaultMaxResponseBytes,
	}
}

// Merge applies non-zero values from source into c. Headers are merged key
// by key.
func (c *Config) Merge(source *Config) {
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.Timeout != 0 {
		c.Timeout = source.Timeout
	}
	if source.MaxResponseBytes > 0 {
		c.MaxResponseBytes = source.MaxResponseBytes
	}
	if len(source.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(source.Headers))
		}
		maps.Copy(c.Headers, source.Headers)
	}
}

// Validate checks that the endpoint is an absolute http or https URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidEndpoint, c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q: missing host", ErrInvalidEndpoint, c.Endpoint)
	}
	return nil
}
