// Package main provides the sentiment analyzer API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sentiment-analyzer/internal/api"
	"sentiment-analyzer/internal/config"
	"sentiment-analyzer/internal/logger"
	"sentiment-analyzer/internal/ollama"
	"sentiment-analyzer/internal/sentiment"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("SENTIMENT_CONFIG"), "Path to YAML config file")
		port       = flag.Int("port", 0, "Override server port")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	client := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Timeout.Std(), cfg.Ollama.ProbeTimeout.Std())
	svc := sentiment.NewService(client, cfg.Ollama.Model)

	server := api.NewServer(api.Config{
		Service:        svc,
		Logger:         log,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})

	addr := cfg.Server.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server,
		// Write timeout must leave room for a full inference call.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Ollama.Timeout.Std() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("starting server",
			zap.String("address", addr),
			zap.String("ollama_url", cfg.Ollama.BaseURL),
			zap.String("model", cfg.Ollama.Model),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
