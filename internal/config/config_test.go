package config

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("gridsight-api", mapLookup(map[string]string{"API_KEY": "k"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.MaxBodyBytes != 10<<20 {
		t.Fatalf("HTTP.MaxBodyBytes = %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Fatalf("AI.Provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.APIKey != "k" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.AI.Timeout != 0 {
		t.Fatalf("AI.Timeout = %s, want no deadline", cfg.AI.Timeout)
	}
	if cfg.HTTP.WriteTimeout != 0 {
		t.Fatalf("HTTP.WriteTimeout = %s, want no deadline", cfg.HTTP.WriteTimeout)
	}
	if cfg.Table.SampleRows != 150 {
		t.Fatalf("Table.SampleRows = %d", cfg.Table.SampleRows)
	}
	if cfg.Table.CategoricalLimit != 50 {
		t.Fatalf("Table.CategoricalLimit = %d", cfg.Table.CategoricalLimit)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Fatalf("CORS.AllowedOrigins = %#v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	_, err := Load("gridsight-api", mapLookup(map[string]string{}))
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Load() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoadPrefersNamespacedAPIKey(t *testing.T) {
	cfg, err := Load("gridsight-api", mapLookup(map[string]string{
		"API_KEY":              "legacy",
		"GRIDSIGHT_AI_API_KEY": "primary",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.APIKey != "primary" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	cfg, err := Load("gridsight-api", mapLookup(map[string]string{
		"GRIDSIGHT_PROFILE":    "prod",
		"GRIDSIGHT_AI_API_KEY": "k",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadOpenAIProviderDefaults(t *testing.T) {
	cfg, err := Load("gridsight-api", mapLookup(map[string]string{
		"GRIDSIGHT_AI_PROVIDER": "OpenAI",
		"GRIDSIGHT_AI_API_KEY":  "k",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Fatalf("AI.Provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.BaseURL != "https://api.openai.com" {
		t.Fatalf("AI.BaseURL = %q", cfg.AI.BaseURL)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"GRIDSIGHT_PROFILE":                 "test",
		"GRIDSIGHT_SERVICE_NAME":            "gridsight-custom",
		"GRIDSIGHT_HTTP_ADDR":               ":9999",
		"GRIDSIGHT_HTTP_READ_TIMEOUT":       "2s",
		"GRIDSIGHT_HTTP_WRITE_TIMEOUT":      "30s",
		"GRIDSIGHT_HTTP_MAX_BODY_BYTES":     "2048",
		"GRIDSIGHT_CORS_ALLOWED_ORIGINS":    "http://localhost:3000, https://app.example.com",
		"GRIDSIGHT_LOG_LEVEL":               "error",
		"GRIDSIGHT_AI_PROVIDER":             "openai",
		"GRIDSIGHT_AI_BASE_URL":             "https://api.example.com",
		"GRIDSIGHT_AI_API_KEY":              "secret-key",
		"GRIDSIGHT_AI_MODEL":                "gpt-5.2",
		"GRIDSIGHT_AI_TEMPERATURE":          "0.3",
		"GRIDSIGHT_AI_TIMEOUT":              "21s",
		"GRIDSIGHT_TABLE_SAMPLE_ROWS":       "40",
		"GRIDSIGHT_TABLE_CATEGORICAL_LIMIT": "12",
	})
	cfg, err := Load("gridsight-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "gridsight-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.HTTP.WriteTimeout != 30*time.Second {
		t.Fatalf("HTTP.WriteTimeout = %s", cfg.HTTP.WriteTimeout)
	}
	if cfg.HTTP.MaxBodyBytes != 2048 {
		t.Fatalf("HTTP.MaxBodyBytes = %d", cfg.HTTP.MaxBodyBytes)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://app.example.com" {
		t.Fatalf("CORS.AllowedOrigins = %#v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.AI.BaseURL != "https://api.example.com" {
		t.Fatalf("AI.BaseURL = %q", cfg.AI.BaseURL)
	}
	if cfg.AI.APIKey != "secret-key" {
		t.Fatalf("AI.APIKey = %q", cfg.AI.APIKey)
	}
	if cfg.AI.Model != "gpt-5.2" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("AI.Temperature = %f", cfg.AI.Temperature)
	}
	if cfg.AI.Timeout != 21*time.Second {
		t.Fatalf("AI.Timeout = %s", cfg.AI.Timeout)
	}
	if cfg.Table.SampleRows != 40 {
		t.Fatalf("Table.SampleRows = %d", cfg.Table.SampleRows)
	}
	if cfg.Table.CategoricalLimit != 12 {
		t.Fatalf("Table.CategoricalLimit = %d", cfg.Table.CategoricalLimit)
	}
}

func TestLoadRequiresWriteTimeoutAboveModelTimeout(t *testing.T) {
	tests := []map[string]string{
		{"GRIDSIGHT_HTTP_WRITE_TIMEOUT": "120s"},
		{"GRIDSIGHT_HTTP_WRITE_TIMEOUT": "20s", "GRIDSIGHT_AI_TIMEOUT": "20s"},
	}
	for _, env := range tests {
		env["GRIDSIGHT_AI_API_KEY"] = "k"
		if _, err := Load("gridsight-api", mapLookup(env)); err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}

	cfg, err := Load("gridsight-api", mapLookup(map[string]string{
		"GRIDSIGHT_AI_API_KEY":         "k",
		"GRIDSIGHT_AI_TIMEOUT":         "20s",
		"GRIDSIGHT_HTTP_WRITE_TIMEOUT": "25s",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.WriteTimeout != 25*time.Second {
		t.Fatalf("HTTP.WriteTimeout = %s", cfg.HTTP.WriteTimeout)
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"GRIDSIGHT_PROFILE": "oops"},
		{"GRIDSIGHT_HTTP_READ_TIMEOUT": "NaN"},
		{"GRIDSIGHT_HTTP_MAX_BODY_BYTES": "lots"},
		{"GRIDSIGHT_CORS_ALLOWED_ORIGINS": " , "},
		{"GRIDSIGHT_AI_PROVIDER": "watson"},
		{"GRIDSIGHT_AI_TEMPERATURE": "bad"},
		{"GRIDSIGHT_TABLE_SAMPLE_ROWS": "0"},
		{"GRIDSIGHT_TABLE_CATEGORICAL_LIMIT": "oops"},
		{"GRIDSIGHT_LOG_JSON": "not-bool"},
		{"GRIDSIGHT_LOG_LEVEL": "verbose"},
	}
	for _, env := range tests {
		env["GRIDSIGHT_AI_API_KEY"] = "k"
		_, err := Load("gridsight-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
