package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/supportchat/core/config"
	"github.com/tailored-agentic-units/supportchat/tui"
)

const (
	modeTUI     = "tui"
	modeConsole = "console"

	envAssistant = "CHAT_ASSISTANT"
	envMode      = "CHAT_MODE"
)

// uiConfig is the presentation part of the chat config file:
//
//	{"mode": "console", "ui": {"assistant_name": "Ayesha"}, "transport": {...}}
type uiConfig struct {
	Mode string     `json:"mode,omitempty"`
	TUI  tui.Config `json:"ui"`
}

func loadUIConfig(filename string) (uiConfig, error) {
	cfg := uiConfig{Mode: modeTUI, TUI: tui.DefaultConfig()}
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded uiConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if loaded.Mode != "" {
		cfg.Mode = loaded.Mode
	}
	cfg.TUI.Merge(&loaded.TUI)
	return cfg, nil
}

func (c *uiConfig) applyEnv(env *config.Env) {
	if v := env.Get(envAssistant); v != "" {
		c.TUI.AssistantName = v
	}
	if v := env.Get(envMode); v != "" {
		c.Mode = v
	}
}
