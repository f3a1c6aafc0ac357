package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Chat endpoint
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	ChatMaxTokens   int
	ChatTemperature float64
	ChatTimeout     time.Duration
	ChatMaxRetries  int

	// Context selection
	ContextTokenBudget    int
	ContextCharsPerToken  int
	ContextVerbatimSlides int

	// Upload limits
	MaxUploadBytes int64

	LogLevel string
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8095"),

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     envOr("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		ChatMaxTokens:   envInt("CHAT_MAX_TOKENS", 1500),
		ChatTemperature: envFloat("CHAT_TEMPERATURE", 0.7),
		ChatTimeout:     envDuration("CHAT_TIMEOUT", 120*time.Second),
		ChatMaxRetries:  envInt("CHAT_MAX_RETRIES", 2),

		ContextTokenBudget:    envInt("CONTEXT_TOKEN_BUDGET", 12000),
		ContextCharsPerToken:  envInt("CONTEXT_CHARS_PER_TOKEN", 4),
		ContextVerbatimSlides: envInt("CONTEXT_VERBATIM_SLIDES", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 209715200), // 200MB

		LogLevel: strings.ToLower(envOr("LOG_LEVEL", "info")),
	}

	if cfg.ChatMaxTokens <= 0 {
		cfg.ChatMaxTokens = 1500
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = 120 * time.Second
	}
	if cfg.ContextTokenBudget <= 0 {
		cfg.ContextTokenBudget = 12000
	}
	if cfg.ContextCharsPerToken <= 0 {
		cfg.ContextCharsPerToken = 4
	}
	if cfg.ContextVerbatimSlides <= 0 {
		cfg.ContextVerbatimSlides = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 209715200
	}

	return cfg
}

// Validate rejects values no component can work with. A missing API key is
// allowed; it can be supplied at runtime.
func (c Config) Validate() error {
	if c.ChatTemperature < 0 || c.ChatTemperature > 2 {
		return fmt.Errorf("CHAT_TEMPERATURE must be between 0 and 2, got %v", c.ChatTemperature)
	}
	if c.ChatMaxRetries < 0 || c.ChatMaxRetries > 10 {
		return fmt.Errorf("CHAT_MAX_RETRIES must be between 0 and 10, got %d", c.ChatMaxRetries)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

// ChatTurnTimeout bounds one chat turn: every attempt at ChatTimeout plus the
// longest jittered backoff between attempts (1.5x of 2^n seconds, capped at 30s).
func (c Config) ChatTurnTimeout() time.Duration {
	retries := max(c.ChatMaxRetries, 0)
	total := time.Duration(retries+1) * c.ChatTimeout
	for n := 0; n < retries; n++ {
		base := min(time.Duration(1)<<min(n, 5)*time.Second, 30*time.Second)
		total += base + base/2
	}
	return total
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	if l, ok := logLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
