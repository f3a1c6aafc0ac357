package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/deckchat/internal/api"
	"github.com/dgallion1/deckchat/internal/chat"
	"github.com/dgallion1/deckchat/internal/config"
	"github.com/dgallion1/deckchat/internal/selector"
	"github.com/dgallion1/deckchat/internal/session"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	client := chat.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.ChatTimeout)
	sel := selector.New(selector.Config{
		TokenBudget:    cfg.ContextTokenBudget,
		CharsPerToken:  cfg.ContextCharsPerToken,
		VerbatimSlides: cfg.ContextVerbatimSlides,
	})
	orch := chat.NewOrchestrator(client, sel, chat.Options{
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.ChatMaxTokens,
		Temperature: float32(cfg.ChatTemperature),
		Timeout:     cfg.ChatTimeout,
		MaxRetries:  cfg.ChatMaxRetries,
	}, log)

	sess := session.New(cfg.OpenAIAPIKey)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set; chat needs a key entered through /api/credential")
	}

	// Initialize HTTP server.
	srv := api.NewServer(sess, orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.ChatTurnTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting deckchat", "port", cfg.Port, "model", orch.Model(), "session_id", sess.ID)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
