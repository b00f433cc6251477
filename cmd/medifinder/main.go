// Package main runs the Medifinder chat server: an HTTP API that streams
// assistant turns over SSE, backed by Gemini and a Medifinder MCP tool server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medifinder/chat/internal/config"
	"github.com/medifinder/chat/internal/executor"
	"github.com/medifinder/chat/internal/orchestrator"
	orchadapter "github.com/medifinder/chat/internal/orchestrator/adapter"
	"github.com/medifinder/chat/internal/provider/gemini"
	provider "github.com/medifinder/chat/internal/provider/models"
	"github.com/medifinder/chat/internal/session"
	"github.com/medifinder/chat/internal/web"
	"google.golang.org/genai"
)

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func createProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	client := gemini.NewRealGeminiClient(genaiClient)
	return gemini.New(client, cfg.Provider.Model, cfg.Provider.SystemPrompt), nil
}

func main() {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	prov, err := createProvider(ctx, cfg)
	if err != nil {
		return err
	}

	exec, err := executor.New(cfg.MCP.ServerURL, time.Duration(cfg.MCP.ToolTimeoutSeconds)*time.Second, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}
	defer exec.Close()

	// A dead tool server degrades the assistant to plain conversation
	// rather than blocking startup.
	if err := exec.Connect(ctx); err != nil {
		logger.Warn("MCP server unavailable, continuing without tools",
			"url", cfg.MCP.ServerURL, "error", err)
	} else {
		logger.Info("connected to MCP server", "tools", exec.ToolNames())
	}

	if err := prov.DefineTools(ctx, exec.Tools()); err != nil {
		return fmt.Errorf("failed to register tools with provider: %w", err)
	}

	genConfig := &provider.GenerateConfig{
		Temperature:     &cfg.Provider.Temperature,
		MaxOutputTokens: &cfg.Provider.MaxOutputTokens,
	}
	invoker := orchadapter.NewExecutorAdapter(exec, logger)
	orch := orchestrator.New(prov, invoker, cfg.Orchestrator.MaxRounds, genConfig, logger)
	sessions := session.NewManager(orch, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           web.NewServer(sessions, exec, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "model", cfg.Provider.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
