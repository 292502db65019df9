package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string
	APIPort  string

	DropDir     string
	ArchiveRoot string

	PollInterval   time.Duration
	StableSamples  int
	RescanInterval time.Duration
	Workers        int

	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMRequestTimeout time.Duration
	LLMRatePerMinute  int
	MaxPromptChars    int
	MaxExtractWords   int

	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration

	AuditDriver string
	AuditDSN    string

	DefaultCategories []string
}

// fileConfig is the optional YAML overlay (ALCHEMIST_CONFIG). Environment
// variables win over file values; the file mainly carries the category
// seed list, which is awkward to express in an env var.
type fileConfig struct {
	DropDir     string   `yaml:"drop_dir"`
	ArchiveRoot string   `yaml:"archive_root"`
	Model       string   `yaml:"model"`
	Categories  []string `yaml:"categories"`
}

func Load() (Config, error) {
	cfg := Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),
		APIPort:  mustEnv("API_PORT", "8085"),

		DropDir:     mustEnv("DROP_DIR", "./data/input_drop_zone"),
		ArchiveRoot: mustEnv("ARCHIVE_ROOT", "./data/organized_storage"),

		PollInterval:   mustEnvDuration("POLL_INTERVAL", 500*time.Millisecond),
		StableSamples:  mustEnvInt("STABLE_SAMPLES", 2),
		RescanInterval: mustEnvDuration("RESCAN_INTERVAL", 10*time.Second),
		Workers:        mustEnvInt("WORKERS", 1),

		LLMBaseURL:        mustEnv("LLM_BASE_URL", ""),
		LLMAPIKey:         mustEnv("LLM_API_KEY", ""),
		LLMModel:          mustEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMRequestTimeout: mustEnvDuration("LLM_REQUEST_TIMEOUT", 60*time.Second),
		LLMRatePerMinute:  mustEnvInt("LLM_RATE_PER_MINUTE", 30),
		MaxPromptChars:    mustEnvInt("MAX_PROMPT_CHARS", 8000),
		MaxExtractWords:   mustEnvInt("MAX_EXTRACT_WORDS", 3000),

		RetryMaxAttempts:    mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoff: mustEnvDuration("RETRY_INITIAL_BACKOFF", 2*time.Second),
		RetryMaxBackoff:     mustEnvDuration("RETRY_MAX_BACKOFF", 30*time.Second),

		AuditDriver: mustEnv("AUDIT_DRIVER", "sqlite3"),
		AuditDSN:    mustEnv("AUDIT_DSN", "./data/content_alchemist.db"),

		DefaultCategories: splitList(mustEnv("DEFAULT_CATEGORIES", "Systems CS,ML-Bio,Personal,Finance")),
	}

	if path := os.Getenv("ALCHEMIST_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.DropDir != "" && os.Getenv("DROP_DIR") == "" {
		c.DropDir = fc.DropDir
	}
	if fc.ArchiveRoot != "" && os.Getenv("ARCHIVE_ROOT") == "" {
		c.ArchiveRoot = fc.ArchiveRoot
	}
	if fc.Model != "" && os.Getenv("LLM_MODEL") == "" {
		c.LLMModel = fc.Model
	}
	if len(fc.Categories) > 0 && os.Getenv("DEFAULT_CATEGORIES") == "" {
		c.DefaultCategories = fc.Categories
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
