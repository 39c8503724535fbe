package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/meronoumer/moodreads/internal/form"
)

type Config struct {
	Port            int
	BackendURLs     []string
	BackendBaseURL  string
	BackendTimeout  time.Duration
	RedisURL        string
	CacheTTL        time.Duration
	SessionIdle     time.Duration
	MaxSessions     int
	ExampleMoods    []string
	DefaultLimit    int
	SubmitRateLimit int
	LogLevel        string
	LogFormat       string
	MockBackendPort int
}

// Load configuration from env. A .env file in the working directory is
// read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		BackendURLs:     getEnvList("BACKEND_URLS", []string{"http://localhost:8000/recommend"}),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", ""),
		BackendTimeout:  getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		RedisURL:        getEnv("REDIS_URL", ""),
		CacheTTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),
		SessionIdle:     getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		MaxSessions:     getEnvInt("SESSION_MAX", 10000),
		ExampleMoods:    getEnvList("EXAMPLE_MOODS", nil),
		DefaultLimit:    getEnvInt("DEFAULT_RESULT_COUNT", form.DefaultResultCount),
		SubmitRateLimit: getEnvInt("SUBMIT_RATE_LIMIT", 30),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		MockBackendPort: getEnvInt("MOCK_PORT", 8000),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.BackendURLs) == 0 {
		return fmt.Errorf("BACKEND_URLS must list at least one endpoint")
	}
	for _, u := range c.BackendURLs {
		if strings.HasPrefix(u, "/") && c.BackendBaseURL == "" {
			return fmt.Errorf("relative backend endpoint %q requires BACKEND_BASE_URL", u)
		}
	}
	if !form.ValidLimit(c.DefaultLimit) {
		return fmt.Errorf("DEFAULT_RESULT_COUNT must be one of %v, got %d", form.ResultCounts, c.DefaultLimit)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("SESSION_MAX must be positive, got %d", c.MaxSessions)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", c.BackendTimeout)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) MockAddr() string {
	return fmt.Sprintf(":%d", c.MockBackendPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}

// comma separated, blanks dropped
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
