package transport

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/supportchat/observability"
)

// Registry manages named endpoint configurations with lazy client creation.
// Configs are stored at registration; clients are built on first Get.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	configs  map[string]Config
	clients  map[string]Client
	observer observability.Observer
}

// NewRegistry creates an empty Registry. Clients it builds report to observer.
func NewRegistry(observer observability.Observer) *Registry {
	return &Registry{
		configs:  make(map[string]Config),
		clients:  make(map[string]Client),
		observer: observer,
	}
}

// Register adds a named endpoint configuration after validating it.
func (r *Registry) Register(name string, cfg Config) error {
	if name == "" {
		return ErrEmptyEndpointName
	}

	merged := DefaultConfig()
	merged.Merge(&cfg)
	if err := merged.Validate(); err != nil {
		return fmt.Errorf("endpoint %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; exists {
		return fmt.Errorf("%w: %s", ErrEndpointExists, name)
	}

	r.configs[name] = merged
	return nil
}

// Get returns the client for a named endpoint, creating it on first access.
func (r *Registry) Get(name string) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, registered := r.configs[name]
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotFound, name)
	}

	if c, exists := r.clients[name]; exists {
		return c, nil
	}

	c, err := NewHTTPClient(&cfg, WithObserver(r.observer))
	if err != nil {
		return nil, fmt.Errorf("failed to create client %q: %w", name, err)
	}

	r.clients[name] = c
	return c, nil
}

// Config returns the stored configuration of a named endpoint.
func (r *Registry) Config(name string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, exists := r.configs[name]
	if !exists {
		return Config{}, fmt.Errorf("%w: %s", ErrEndpointNotFound, name)
	}
	return cfg, nil
}

// List returns the registered endpoint names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a named endpoint and its cached client.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrEndpointNotFound, name)
	}

	delete(r.configs, name)
	delete(r.clients, name)
	return nil
}
