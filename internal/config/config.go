package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDB          = errors.New("DATABASE_URL is required")
	ErrInvalidThreshold   = errors.New("PASS_THRESHOLD must be between 0 and 100")
	ErrInvalidRetryDelays = errors.New("RETRY_DELAYS must be a comma-separated list of positive seconds")
)

type Config struct {
	Quality    QualityConfig
	Retry      RetryConfig
	Rules      RulesConfig
	HTTP       HTTPConfig
	Database   DatabaseConfig
	LLM        LLMConfig
	Perplexity PerplexityConfig
	Telegram   TelegramConfig
	Log        LogConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
}

type QualityConfig struct {
	PassThreshold          int
	WordCountFailThreshold float64
	ForcePublishThreshold  int
}

type RetryConfig struct {
	MaxRetries int
	Delays     []time.Duration
}

type RulesConfig struct {
	Path string
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	URL string
}

type LLMConfig struct {
	Provider   string
	OpenRouter OpenRouterConfig
	Anthropic  AnthropicConfig
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type PerplexityConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type LogConfig struct {
	Level  string
	Format string
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

func Load() (*Config, error) {
	retryDelays, err := parseRetryDelays(getEnvOrDefault("RETRY_DELAYS", "1,2,4"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Quality: QualityConfig{
			PassThreshold:          getEnvIntOrDefault("PASS_THRESHOLD", 80),
			WordCountFailThreshold: getEnvFloatOrDefault("WORD_COUNT_FAIL_THRESHOLD", -15.0),
			ForcePublishThreshold:  getEnvIntOrDefault("FORCE_PUBLISH_THRESHOLD", 70),
		},
		Retry: RetryConfig{
			MaxRetries: getEnvIntOrDefault("MAX_RETRIES", 3),
			Delays:     retryDelays,
		},
		Rules: RulesConfig{
			Path: os.Getenv("RULES_PATH"),
		},
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "mock"),
			OpenRouter: OpenRouterConfig{
				APIKey:  os.Getenv("OPENROUTER_API_KEY"),
				Model:   getEnvOrDefault("OPENROUTER_MODEL", "deepseek/deepseek-chat"),
				BaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			},
			Anthropic: AnthropicConfig{
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  getEnvOrDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			},
		},
		Perplexity: PerplexityConfig{
			APIKey:  os.Getenv("PERPLEXITY_API_KEY"),
			Model:   getEnvOrDefault("PERPLEXITY_MODEL", "sonar"),
			BaseURL: getEnvOrDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
			Timeout: time.Duration(getEnvIntOrDefault("PERPLEXITY_TIMEOUT_SEC", 30)) * time.Second,
		},
		Telegram: TelegramConfig{
			Token:  os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID: getEnvInt64OrDefault("TELEGRAM_CHAT_ID", 0),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return ErrMissingDB
	}
	if c.Quality.PassThreshold < 0 || c.Quality.PassThreshold > 100 {
		return ErrInvalidThreshold
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be non-negative, got %d", c.Retry.MaxRetries)
	}
	return nil
}

func parseRetryDelays(raw string) ([]time.Duration, error) {
	parts := strings.Split(raw, ",")
	delays := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		sec, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || sec <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRetryDelays, raw)
		}
		delays = append(delays, time.Duration(sec)*time.Second)
	}
	return delays, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
