package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			assert.Equal(t, tc.expected, getEnvOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			assert.Equal(t, tc.expected, getEnvAsIntOrDefault(tc.key, tc.defaultVal))
		})
	}
}

func TestGetEnvAsListOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected []string
	}{
		{"uses default for empty", "", []string{"*"}},
		{"splits and trims", " http://a.test , http://b.test ", []string{"http://a.test", "http://b.test"}},
		{"uses default for only separators", " , ,", []string{"*"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TEST_LIST", tc.envValue)

			assert.Equal(t, tc.expected, getEnvAsListOrDefault("TEST_LIST", []string{"*"}))
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL", "OLLAMA_BASE_URL",
		"OLLAMA_MODEL", "OLLAMA_API_KEY", "DEFAULT_PROVIDER", "CORS_ALLOWED_ORIGINS",
		"SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OllamaBaseURL)
	assert.Equal(t, "gemma3:4b", cfg.OllamaModel)
	assert.Equal(t, "ollama", cfg.OllamaAPIKey)
	assert.Equal(t, ProviderGoogle, cfg.DefaultProvider)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.GeminiEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_LegacyAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg := Load()

	assert.Equal(t, "legacy-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.GeminiEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"google with key", Config{DefaultProvider: ProviderGoogle, GeminiAPIKey: "k"}, false},
		{"google without key", Config{DefaultProvider: ProviderGoogle}, true},
		{"ollama without key", Config{DefaultProvider: ProviderOllama}, false},
		{"unknown provider", Config{DefaultProvider: "openai"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
