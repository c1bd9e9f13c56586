package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGoogle = "google"
	ProviderOllama = "ollama"
)

type Config struct {
	// Server
	Port            string
	Env             string
	ShutdownTimeout time.Duration

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Ollama
	OllamaBaseURL string
	OllamaModel   string
	OllamaAPIKey  string

	// Relay
	DefaultProvider string

	// Frontend
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8000"),
		Env:             getEnvOrDefault("ENV", "development"),
		ShutdownTimeout: time.Duration(getEnvAsIntOrDefault("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
		GeminiAPIKey:    getEnvOrDefault("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:     getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaBaseURL:   getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434/v1"),
		OllamaModel:     getEnvOrDefault("OLLAMA_MODEL", "gemma3:4b"),
		OllamaAPIKey:    getEnvOrDefault("OLLAMA_API_KEY", "ollama"),
		DefaultProvider: getEnvOrDefault("DEFAULT_PROVIDER", ProviderGoogle),
		AllowedOrigins:  getEnvAsListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	return cfg
}

// Validate checks that the default provider can actually be served.
func (c *Config) Validate() error {
	switch c.DefaultProvider {
	case ProviderGoogle:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("default provider %q requires GEMINI_API_KEY", c.DefaultProvider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown default provider %q", c.DefaultProvider)
	}
	return nil
}

// GeminiEnabled reports whether the Gemini provider should be registered.
func (c *Config) GeminiEnabled() bool {
	return c.GeminiAPIKey != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, entry := range strings.Split(val, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
