package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tailored-agentic-units/supportchat/agentd"
	"github.com/tailored-agentic-units/supportchat/observability"
)

func main() {
	var (
		envFile = flag.String("env-file", ".env", "Path to dotenv file (skipped when missing)")
		addr    = flag.String("addr", "", "Listen address (overrides environment)")
		jsonLog = flag.Bool("json", false, "Log JSON instead of text")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := agentd.LoadEnv(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var logger *slog.Logger
	if *jsonLog {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	server, err := agentd.New(startCtx, cfg, agentd.WithObserver(observability.NewSlogObserver(logger)))
	cancel()
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer server.Close()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ResponderTimeout.Std() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting agent service",
			"addr", cfg.Addr,
			"redis", cfg.RedisURL != "",
			"model", cfg.Model)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down agent service")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("agent service stopped")
}
