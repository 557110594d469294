package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const defaultNotesThreshold = 20

// StorageConfig selects and configures the catalog backend.
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	DatabaseURL string `json:"DATABASE_URL"`
	RedisURL    string `json:"redis_url"`
	Key         string `json:"key"`
}

// Config represents the application configuration.
type Config struct {
	Environment           string        `json:"environment"`
	ListenAddr            string        `json:"listen_addr"`
	AllowedOrigins        []string      `json:"allowed_origins"`
	GeminiAPIKey          string        `json:"gemini_api_key"`
	GeminiModel           string        `json:"gemini_model"`
	LocalLLMURL           string        `json:"local_llm_url"`
	LocalLLMModel         string        `json:"local_llm_model"`
	BackendAPIURL         string        `json:"backend_api_url"`
	Storage               StorageConfig `json:"storage"`
	ImagesDir             string        `json:"images_dir"`
	ThumbnailWidth        uint          `json:"thumbnail_width"`
	NotesThreshold        *int          `json:"notes_threshold"`
	RequestTimeoutSeconds int           `json:"request_timeout_seconds"`
}

// Load reads the JSON file at path (a missing file is not an error), applies
// environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.Environment, "APP_ENV")
	set(&cfg.ListenAddr, "LISTEN_ADDR")
	set(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	set(&cfg.GeminiModel, "GEMINI_MODEL")
	set(&cfg.LocalLLMURL, "LOCAL_LLM_URL")
	set(&cfg.LocalLLMModel, "LOCAL_LLM_MODEL")
	set(&cfg.BackendAPIURL, "BACKEND_API_URL")
	set(&cfg.Storage.Driver, "STORAGE_DRIVER")
	set(&cfg.Storage.Path, "STORAGE_PATH")
	set(&cfg.Storage.DatabaseURL, "DATABASE_URL")
	set(&cfg.Storage.RedisURL, "REDIS_URL")
	set(&cfg.Storage.Key, "STORAGE_KEY")
	set(&cfg.ImagesDir, "IMAGES_DIR")
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverFile
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data"
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = "reelchef_recipes"
	}
	if cfg.NotesThreshold == nil {
		threshold := defaultNotesThreshold
		cfg.NotesThreshold = &threshold
	}
	if cfg.ThumbnailWidth == 0 {
		cfg.ThumbnailWidth = 400
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 45
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage driver %q requires DATABASE_URL", c.Storage.Driver)
		}
	case DriverRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage driver %q requires redis_url", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.NotesThreshold != nil && *c.NotesThreshold < 0 {
		return fmt.Errorf("notes_threshold must not be negative")
	}
	return nil
}

// Warnings lists features that are disabled by missing settings. They are
// logged at startup; the features fail only when used.
func (c *Config) Warnings() []string {
	var w []string
	if c.GeminiAPIKey == "" && c.LocalLLMURL == "" {
		w = append(w, "No AI credential is set (GEMINI_API_KEY or LOCAL_LLM_URL). AI text processing will not work.")
	}
	if c.BackendAPIURL == "" {
		w = append(w, "Backend API URL (BACKEND_API_URL) is not set. Importing from reel links will not work.")
	}
	return w
}

// RequestTimeout is the bound applied to requests that call external services.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
