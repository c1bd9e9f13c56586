package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/websocket"
)

func New(
	logger zerolog.Logger,
	allowedOrigins []string,
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
	wsHub *websocket.Hub,
	ui http.Handler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/chat", chatHandler.Chat)
	r.Post("/chat/stream", chatHandler.Stream)
	r.Get("/chat/stream", chatHandler.StreamQuery)
	r.Get("/chat/ws", wsHub.HandleWebSocket)

	// Browser UI
	r.Handle("/*", ui)

	return r
}
