// Package config provides environment configuration for the API server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Env string

	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	AllowedOrigins     []string
	MaxRequestBytes    int64

	// Database
	DatabaseURL string

	// NATS settings
	NATSEnabled  bool
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// Redis search cache; empty disables caching
	RedisURL       string
	SearchCacheTTL time.Duration

	// JWT settings
	JWTSecret     string
	JWTExpiration time.Duration
	AuthRequired  bool

	// LLM settings
	AnthropicAPIKey  string
	AnthropicModel   string
	OpenAIAPIKey     string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	LLMFallbackOrder []string
	ProviderCooldown time.Duration
	LLMTimeout       time.Duration
	LLMMaxTokens     int
	LLMTemperature   float64

	// Search settings
	GoogleSearchAPIKey   string
	GoogleSearchEngineID string
	GoogleSearchURL      string
	SearchTimeout        time.Duration
	SearchMaxResults     int

	// Scraper settings
	ScrapeDelay     time.Duration
	ScrapeTimeout   time.Duration
	ScrapeMaxEnrich int
	ScrapeUserAgent string

	// Chat settings
	HistoryLimit    int
	PageSize        int
	ConversationTTL time.Duration

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
	ChatRateLimit     int

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment variables
// win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env: getEnv("ENV", "production"),

		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		AllowedOrigins:     getListEnv("ALLOWED_ORIGINS", []string{"*"}),
		MaxRequestBytes:    int64(getIntEnv("MAX_REQUEST_BYTES", 1<<20)),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://investor_finder.db"),

		// NATS
		NATSEnabled:  getBoolEnv("NATS_ENABLED", false),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Redis
		RedisURL:       getEnv("REDIS_URL", ""),
		SearchCacheTTL: getDurationEnv("SEARCH_CACHE_TTL", 6*time.Hour),

		// JWT
		JWTSecret:     getEnv("JWT_SECRET", "development-secret-change-in-production"),
		JWTExpiration: getDurationEnv("JWT_EXPIRATION", 60*time.Minute),
		AuthRequired:  getBoolEnv("AUTH_REQUIRED", false),

		// LLM
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-sonnet-20240229"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		LLMFallbackOrder: getListEnv("LLM_FALLBACK_ORDER", []string{"gemini", "openai", "anthropic"}),
		ProviderCooldown: getDurationEnv("PROVIDER_COOLDOWN", 300*time.Second),
		LLMTimeout:       getDurationEnv("LLM_TIMEOUT", 60*time.Second),
		LLMMaxTokens:     getIntEnv("LLM_MAX_TOKENS", 2048),
		LLMTemperature:   getFloatEnv("LLM_TEMPERATURE", 0.7),

		// Search
		GoogleSearchAPIKey:   getEnv("GOOGLE_SEARCH_API_KEY", ""),
		GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		GoogleSearchURL:      getEnv("GOOGLE_SEARCH_URL", "https://www.googleapis.com/customsearch/v1"),
		SearchTimeout:        getDurationEnv("SEARCH_TIMEOUT", 15*time.Second),
		SearchMaxResults:     getIntEnv("SEARCH_MAX_RESULTS", 30),

		// Scraper
		ScrapeDelay:     getDurationEnv("SCRAPE_DELAY", 200*time.Millisecond),
		ScrapeTimeout:   getDurationEnv("SCRAPE_TIMEOUT", 10*time.Second),
		ScrapeMaxEnrich: getIntEnv("SCRAPE_MAX_ENRICH", 15),
		ScrapeUserAgent: getEnv("SCRAPE_USER_AGENT", "Mozilla/5.0 (compatible; InvestorFinder/1.0)"),

		// Chat
		HistoryLimit:    getIntEnv("HISTORY_LIMIT", 20),
		PageSize:        getIntEnv("PAGE_SIZE", 10),
		ConversationTTL: getDurationEnv("CONVERSATION_TTL", 30*24*time.Hour),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		ChatRateLimit:     getIntEnv("CHAT_RATE_LIMIT", 20),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error
	if len(c.LLMFallbackOrder) == 0 {
		errs = append(errs, errors.New("LLM_FALLBACK_ORDER must name at least one provider"))
	}
	if c.Env == "production" && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit))
	}
	return errors.Join(errs...)
}

// SearchConfigured reports whether the Google search credentials are set.
func (c *Config) SearchConfigured() bool {
	return c.GoogleSearchAPIKey != "" && c.GoogleSearchEngineID != ""
}

// LLMAPIKey returns the API key configured for an LLM provider name.
func (c *Config) LLMAPIKey(provider string) string {
	switch provider {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("5m") and bare integers as seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
