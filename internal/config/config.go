package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// ProviderKeys holds the credentials of the lead sources.
type ProviderKeys struct {
	GooglePlacesAPIKey   string
	YelpAPIKey           string
	DirectoryBackendURL  string
	GeminiAPIKey         string
	GeminiModel          string
	OpenAIAPIKey         string
	OpenAIModel          string
	AnthropicAPIKey      string
	ClaudeModel          string
	CohereAPIKey         string
	CohereModel          string
	// GenerativePreference names the AI backend tried first, e.g. "claude".
	GenerativePreference string
}

// GenerativeConfigured reports whether any AI backend has a key.
func (p ProviderKeys) GenerativeConfigured() bool {
	return p.GeminiAPIKey != "" || p.OpenAIAPIKey != "" || p.AnthropicAPIKey != "" || p.CohereAPIKey != ""
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL        string
	DatabaseMaxConns   int32
	SQLitePath         string
	JWTSecret          string
	Port               string
	OperatorKeyHash    string
	AdminKeyHash       string
	RateLimitDiscover  RateLimitConfig
	TokenTTL           time.Duration
	DiscoveryTimeout   time.Duration
	DefaultPhoneRegion string
	LogLevel           string
	Providers          ProviderKeys
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabaseMaxConns:   int32(parseInt(getEnv("DB_MAX_CONNS", "8"), 8)),
		SQLitePath:         getEnv("SQLITE_PATH", "leads.db"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		Port:               getEnv("PORT", "8080"),
		OperatorKeyHash:    os.Getenv("OPERATOR_KEY_HASH"),
		AdminKeyHash:       os.Getenv("ADMIN_KEY_HASH"),
		TokenTTL:           parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		DiscoveryTimeout:   parseDuration(getEnv("DISCOVERY_TIMEOUT", "90s"), 90*time.Second),
		DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Providers: ProviderKeys{
			GooglePlacesAPIKey:   os.Getenv("GOOGLE_PLACES_API_KEY"),
			YelpAPIKey:           os.Getenv("YELP_API_KEY"),
			DirectoryBackendURL:  os.Getenv("DIRECTORY_BACKEND_URL"),
			GeminiAPIKey:         getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:          os.Getenv("OPENAI_MODEL"),
			AnthropicAPIKey:      os.Getenv("ANTHROPIC_API_KEY"),
			ClaudeModel:          os.Getenv("CLAUDE_MODEL"),
			CohereAPIKey:         os.Getenv("COHERE_API_KEY"),
			CohereModel:          os.Getenv("COHERE_MODEL"),
			GenerativePreference: os.Getenv("AI_PROVIDER"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_DISCOVER", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_DISCOVER value: %w", err)
	}
	cfg.RateLimitDiscover = rl

	return cfg, nil
}

// ProvidersConfigured reports whether at least one lead source has the
// credentials it needs.
func (c *Config) ProvidersConfigured() bool {
	p := c.Providers
	return p.GooglePlacesAPIKey != "" || p.YelpAPIKey != "" || p.DirectoryBackendURL != "" || p.GenerativeConfigured()
}

// EnvStatus lists missing settings. Errors prevent discovery; warnings
// only disable a source or feature.
type EnvStatus struct {
	Errors   []string
	Warnings []string
}

// OK reports whether no blocking problem was found.
func (s EnvStatus) OK() bool {
	return len(s.Errors) == 0
}

// Status inspects the loaded configuration.
func (c *Config) Status() EnvStatus {
	var st EnvStatus
	if !c.ProvidersConfigured() {
		st.Errors = append(st.Errors, "no lead provider configured: set GOOGLE_PLACES_API_KEY, YELP_API_KEY, DIRECTORY_BACKEND_URL or an AI key")
	}
	if c.Providers.GooglePlacesAPIKey == "" {
		st.Warnings = append(st.Warnings, "GOOGLE_PLACES_API_KEY not set: real places data disabled")
	}
	if !c.Providers.GenerativeConfigured() {
		st.Warnings = append(st.Warnings, "no GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or COHERE_API_KEY set: AI fallback disabled")
	}
	if c.Providers.YelpAPIKey == "" {
		st.Warnings = append(st.Warnings, "YELP_API_KEY not set: Yelp search disabled")
	}
	if c.Providers.DirectoryBackendURL == "" {
		st.Warnings = append(st.Warnings, "DIRECTORY_BACKEND_URL not set: directory scraping disabled")
	}
	if c.JWTSecret == "dev-secret" {
		st.Warnings = append(st.Warnings, "JWT_SECRET uses the development default")
	}
	if c.OperatorKeyHash == "" && c.AdminKeyHash == "" {
		st.Warnings = append(st.Warnings, "OPERATOR_KEY_HASH and ADMIN_KEY_HASH not set: token issuing disabled")
	}
	return st
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
