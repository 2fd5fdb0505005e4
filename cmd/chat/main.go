package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tailored-agentic-units/supportchat/chat"
	"github.com/tailored-agentic-units/supportchat/console"
	"github.com/tailored-agentic-units/supportchat/core/config"
	"github.com/tailored-agentic-units/supportchat/observability"
	"github.com/tailored-agentic-units/supportchat/tui"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to chat config JSON file")
		envFile    = flag.String("env-file", ".env", "Path to dotenv file (skipped when missing)")
		endpoint   = flag.String("endpoint", "", "Agent service URL (overrides config)")
		target     = flag.String("target", "", "Named endpoint from the config (overrides config)")
		sessionID  = flag.String("session", "", "Session id; generated when empty (overrides config)")
		timeout    = flag.Duration("timeout", -1, "Per-turn timeout; 0 disables (overrides config)")
		assistant  = flag.String("assistant", "", "Assistant display name (overrides config)")
		mode       = flag.String("mode", "", `UI mode: "tui" or "console" (overrides config)`)
		plain      = flag.Bool("plain", false, "Disable colors and markdown rendering")
		logFile    = flag.String("log-file", "", "Write logs to this file (default: discard)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := chat.DefaultConfig()
	if *configFile != "" {
		loaded, err := chat.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	ui, err := loadUIConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ApplyEnv(*envFile); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	env, err := config.LoadEnv(*envFile)
	if err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	ui.applyEnv(env)

	if *endpoint != "" {
		cfg.Transport.Endpoint = *endpoint
	}
	if *target != "" {
		cfg.Target = *target
	}
	if *sessionID != "" {
		cfg.Session.ID = *sessionID
	}
	switch {
	case *timeout == 0:
		cfg.RequestTimeout = config.Disabled
	case *timeout > 0:
		cfg.RequestTimeout = config.Duration(*timeout)
	}
	if *assistant != "" {
		ui.TUI.AssistantName = *assistant
	}
	if *mode != "" {
		ui.Mode = *mode
	}
	if *plain {
		ui.TUI.MarkdownStyle = "none"
	}

	logger, closeLog, err := newLogger(*logFile, *verbose)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	switch ui.Mode {
	case modeTUI:
		err = runTUI(&cfg, ui.TUI)
	case modeConsole:
		err = runConsole(&cfg, ui.TUI.AssistantName, *plain)
	default:
		err = fmt.Errorf("unknown mode %q", ui.Mode)
	}
	if err != nil {
		log.Fatalf("Chat failed: %v", err)
	}
}

func newLogger(path string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func runTUI(cfg *chat.Config, ui tui.Config) error {
	var bridge tui.Bridge

	ctrl, err := chat.New(cfg, chat.WithCompletionHook(bridge.Hook))
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}
	defer ctrl.Close()

	program := tea.NewProgram(tui.New(ctrl, &ui), tea.WithAltScreen(), tea.WithMouseCellMotion())
	bridge.Attach(program)

	_, err = program.Run()
	return err
}

func runConsole(cfg *chat.Config, assistant string, plain bool) error {
	ctrl, err := chat.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []console.Option{console.WithAssistantName(assistant)}
	if plain {
		opts = append(opts, console.WithNoColor())
	}

	runErr := console.New(ctrl, os.Stdin, os.Stdout, opts...).Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		ctrl.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-closeCtx.Done():
	}

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
