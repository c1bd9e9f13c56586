package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/router"
	"chatbot-backend/internal/services"
	"chatbot-backend/internal/web"
	"chatbot-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// ──── Step 2: Initialize Providers ────
	var providers []services.Provider

	var gemini *services.GeminiProvider
	if cfg.GeminiEnabled() {
		var err error
		gemini, err = services.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini client initialization failed")
		}
		defer gemini.Close()
		providers = append(providers, gemini)
		logger.Info().Str("model", cfg.GeminiModel).Msg("gemini provider ready")
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, google provider disabled")
	}

	providers = append(providers, services.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.OllamaModel))
	logger.Info().
		Str("base_url", cfg.OllamaBaseURL).
		Str("model", cfg.OllamaModel).
		Msg("ollama provider ready")

	registry, err := services.NewRegistry(cfg.DefaultProvider, providers...)
	if err != nil {
		logger.Fatal().Err(err).Msg("provider registry initialization failed")
	}

	// ──── Step 3: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(registry, logger)
	healthHandler := handlers.NewHealthHandler(registry)
	wsHub := websocket.NewHub(registry, logger)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(logger, cfg.AllowedOrigins, chatHandler, healthHandler, wsHub, web.Handler())

	// No WriteTimeout: streaming responses stay open as long as the provider emits.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("default_provider", registry.Default()).
			Strs("providers", registry.Names()).
			Msg("starting chat relay")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown.
	wsHub.CloseAll()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
