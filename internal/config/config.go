package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var ErrMissingAPIKey = errors.New("GRIDSIGHT_AI_API_KEY (or API_KEY) is required")

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	CORS          CORSConfig
	AI            AIConfig
	Table         TableConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

// HTTPConfig.WriteTimeout bounds the whole response, model calls included.
// Zero means no deadline. When set it must exceed AIConfig.Timeout.
type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AIConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	// Timeout bounds a single model call; zero means no deadline.
	Timeout time.Duration
}

type TableConfig struct {
	SampleRows       int
	CategoricalLimit int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("GRIDSIGHT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid GRIDSIGHT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "GRIDSIGHT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "GRIDSIGHT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "GRIDSIGHT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "GRIDSIGHT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "GRIDSIGHT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "GRIDSIGHT_HTTP_MAX_BODY_BYTES", &cfg.HTTP.MaxBodyBytes); err != nil {
		return Config{}, err
	}
	if err := applyList(lookup, "GRIDSIGHT_CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "GRIDSIGHT_AI_PROVIDER", &cfg.AI.Provider); err != nil {
		return Config{}, err
	}
	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	if cfg.AI.Provider == ProviderOpenAI {
		cfg.AI.Model = "gpt-4o-mini"
		cfg.AI.BaseURL = "https://api.openai.com"
	}
	// API_KEY is the variable name older deployments put in their .env.
	if err := applyString(lookup, "API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "GRIDSIGHT_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "GRIDSIGHT_AI_BASE_URL", &cfg.AI.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "GRIDSIGHT_AI_MODEL", &cfg.AI.Model); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "GRIDSIGHT_AI_TEMPERATURE", &cfg.AI.Temperature); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "GRIDSIGHT_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "GRIDSIGHT_TABLE_SAMPLE_ROWS", &cfg.Table.SampleRows); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "GRIDSIGHT_TABLE_CATEGORICAL_LIMIT", &cfg.Table.CategoricalLimit); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "GRIDSIGHT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "GRIDSIGHT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	switch cfg.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return Config{}, fmt.Errorf("invalid GRIDSIGHT_AI_PROVIDER: %q", cfg.AI.Provider)
	}
	if cfg.AI.Model == "" {
		return Config{}, fmt.Errorf("ai model is required")
	}
	if cfg.AI.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	if cfg.Table.SampleRows <= 0 {
		return Config{}, fmt.Errorf("GRIDSIGHT_TABLE_SAMPLE_ROWS must be positive")
	}
	if cfg.Table.CategoricalLimit <= 0 {
		return Config{}, fmt.Errorf("GRIDSIGHT_TABLE_CATEGORICAL_LIMIT must be positive")
	}
	if cfg.HTTP.WriteTimeout > 0 && (cfg.AI.Timeout <= 0 || cfg.HTTP.WriteTimeout <= cfg.AI.Timeout) {
		return Config{}, fmt.Errorf("GRIDSIGHT_HTTP_WRITE_TIMEOUT (%s) must exceed GRIDSIGHT_AI_TIMEOUT (%s)", cfg.HTTP.WriteTimeout, cfg.AI.Timeout)
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "gridsight-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 10 << 20,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		AI: AIConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-2.0-flash",
			Temperature: 0,
			Timeout:     0,
		},
		Table: TableConfig{
			SampleRows:       150,
			CategoricalLimit: 50,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyList(lookup LookupFunc, key string, dst *[]string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("invalid %s: empty list", key)
	}
	*dst = values
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
