package handlers

import (
	"net/http"
	"time"
)

const version = "0.1.0"

type providerLister interface {
	Names() []string
	Default() string
}

type HealthResponse struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	DefaultProvider string   `json:"default_provider"`
	Providers       []string `json:"providers"`
	Timestamp       string   `json:"timestamp"`
}

type HealthHandler struct {
	providers providerLister
}

func NewHealthHandler(providers providerLister) *HealthHandler {
	return &HealthHandler{providers: providers}
}

// Health reports liveness and which providers this instance relays to.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		Version:         version,
		DefaultProvider: h.providers.Default(),
		Providers:       h.providers.Names(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	})
}
