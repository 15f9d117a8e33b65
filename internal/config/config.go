// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// DispatchConfig controls the query dispatcher batching and retry behavior
type DispatchConfig struct {
	BatchSize       int // queries run concurrently per batch
	CooldownMs      int // pause between batches
	MaxRetries      int // attempts per query before falling back
	RetryBaseMs     int // first backoff delay, doubles each attempt
	QueryMaxTokens  int
	OpenAIRPM       int // request rate limit per provider
	AnthropicRPM    int
	RequestTimeoutS int
}

// CacheConfig controls the advisory development-time response cache
type CacheConfig struct {
	Enabled    bool
	TTLMinutes int
}

// MockConfig controls the synthetic fallback response generator
type MockConfig struct {
	// ForceMock routes every model to the mock client (local development)
	ForceMock bool
	// Variance keeps per-call randomness in mock output; disable for
	// reproducible runs with a fixed seed
	Variance bool
	Seed     int64 // 0 means time-seeded
}

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	Models            []string // model backends queried per fingerprint run
	Dispatch          DispatchConfig
	Cache             CacheConfig
	Mock              MockConfig
	Database          DatabaseConfig
}

// DatabaseConfig mirrors the standard postgres connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	Configured      bool // true when DATABASE_URL or DB_HOST was provided
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		Models:            getEnvList("FINGERPRINT_MODELS", []string{"gpt-4.1", "claude-sonnet-4-20250514"}),
	}

	config.Dispatch = DispatchConfig{
		BatchSize:       getEnvInt("DISPATCH_BATCH_SIZE", 5),
		CooldownMs:      getEnvInt("DISPATCH_COOLDOWN_MS", 1000),
		MaxRetries:      getEnvInt("DISPATCH_MAX_RETRIES", 3),
		RetryBaseMs:     getEnvInt("DISPATCH_RETRY_BASE_MS", 500),
		QueryMaxTokens:  getEnvInt("QUERY_MAX_TOKENS", 1000),
		OpenAIRPM:       getEnvInt("OPENAI_RPM", 60),
		AnthropicRPM:    getEnvInt("ANTHROPIC_RPM", 60),
		RequestTimeoutS: getEnvInt("REQUEST_TIMEOUT_SECONDS", 120),
	}

	config.Cache = CacheConfig{
		Enabled:    getEnvBool("RESPONSE_CACHE_ENABLED", config.Environment == "development"),
		TTLMinutes: getEnvInt("RESPONSE_CACHE_TTL_MINUTES", 15),
	}

	config.Mock = MockConfig{
		ForceMock: getEnvBool("MOCK_MODE", false),
		Variance:  getEnvBool("MOCK_VARIANCE", true),
		Seed:      int64(getEnvInt("MOCK_SEED", 0)),
	}

	// Parse database configuration
	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, try individual env vars as fallback
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "visiq"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
			Configured:      os.Getenv("DB_HOST") != "",
		}
	}
	config.Database = dbConfig

	return config
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	config := DatabaseConfig{
		Host:            parsedURL.Hostname(),
		Port:            5432, // default
		User:            parsedURL.User.Username(),
		Name:            strings.TrimPrefix(parsedURL.Path, "/"),
		SSLMode:         getEnv("DB_SSLMODE", "require"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		Configured:      true,
	}

	if password, ok := parsedURL.User.Password(); ok {
		config.Password = password
	}

	if parsedURL.Port() != "" {
		if port, err := strconv.Atoi(parsedURL.Port()); err == nil {
			config.Port = port
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
