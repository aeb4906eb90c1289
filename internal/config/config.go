package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"nuanswers/internal/errors"
)

// DefaultTutoringSchedule is the in-person tutoring timetable, institution-local time
const DefaultTutoringSchedule = "Monday=10:30-12:30;Tuesday=17:00-19:00;Wednesday=12:00-14:00;Thursday=10:30-12:30;Friday=13:00-15:00"

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Admin    AdminConfig
	Tutoring TutoringConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds record store connection settings
type DatabaseConfig struct {
	URL    string
	Driver string
}

// AIConfig holds text-generation service settings
type AIConfig struct {
	OpenAIKey       string
	BaseURL         string
	ChatModel       string
	VisionModel     string
	MaxTokens       int
	VisionMaxTokens int
	Temperature     float64
	Timeout         time.Duration

	// PromptsDir overrides the built-in prompt templates when set
	PromptsDir string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// AdminConfig holds the shared dashboard password
type AdminConfig struct {
	Password string
}

// TutoringConfig holds the in-person tutoring gate settings
type TutoringConfig struct {
	TimeZone string
	Schedule string
}

// SessionConfig holds per-user session storage settings
type SessionConfig struct {
	RedisURL   string
	TTL        time.Duration
	CookieName string
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables.
// Missing credentials are not an error here; each feature checks its own
// requirements with RequireAI, RequireAdmin and RequireDatabase.
func Load() (*Config, error) {
	cfg := &Config{
		Database: loadDatabaseConfig(),
		AI:       loadAIConfig(),
		Server:   loadServerConfig(),
		Admin:    AdminConfig{Password: os.Getenv("ADMIN_PASSWORD")},
		Tutoring: loadTutoringConfig(),
		Session:  loadSessionConfig(),
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
			Pretty: getEnvBoolOrDefault("LOG_PRETTY", false),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func loadDatabaseConfig() DatabaseConfig {
	url := os.Getenv("DATABASE_URL")
	// Some hosts still hand out the legacy scheme
	if strings.HasPrefix(url, "postgres://") {
		url = "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	return DatabaseConfig{
		URL:    url,
		Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
	}
}

func loadAIConfig() AIConfig {
	return AIConfig{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		BaseURL:         getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ChatModel:       getEnvOrDefault("LLM_MODEL", "gpt-3.5-turbo"),
		VisionModel:     getEnvOrDefault("VISION_MODEL", "gpt-4o-mini"),
		MaxTokens:       getEnvIntOrDefault("MAX_TOKENS", 1024),
		VisionMaxTokens: getEnvIntOrDefault("VISION_MAX_TOKENS", 300),
		Temperature:     getEnvFloatOrDefault("TEMPERATURE", 0.7),
		Timeout:         getEnvDurationOrDefault("LLM_TIMEOUT", 2*time.Minute),
		PromptsDir:      os.Getenv("PROMPTS_DIR"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 25)) << 20,
	}
}

func loadTutoringConfig() TutoringConfig {
	return TutoringConfig{
		TimeZone: getEnvOrDefault("TUTORING_TIMEZONE", "America/New_York"),
		Schedule: getEnvOrDefault("TUTORING_SCHEDULE", DefaultTutoringSchedule),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		RedisURL:   os.Getenv("REDIS_URL"),
		TTL:        getEnvDurationOrDefault("SESSION_TTL", 12*time.Hour),
		CookieName: getEnvOrDefault("SESSION_COOKIE", "nuanswers_session"),
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite")
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if _, err := time.LoadLocation(cfg.Tutoring.TimeZone); err != nil {
		return errors.Wrapf(errors.ConfigInvalid("unknown tutoring time zone"), "TUTORING_TIMEZONE %q", cfg.Tutoring.TimeZone)
	}
	return nil
}

// RequireAI reports a configuration error when the text-generation credential is absent
func (c *Config) RequireAI() error {
	if strings.TrimSpace(c.AI.OpenAIKey) == "" {
		return errors.ConfigInvalid("OpenAI API key not configured: set OPENAI_API_KEY and restart the application")
	}
	return nil
}

// RequireAdmin reports a configuration error when the dashboard password is absent
func (c *Config) RequireAdmin() error {
	if c.Admin.Password == "" {
		return errors.ConfigInvalid("admin password not configured: set ADMIN_PASSWORD")
	}
	return nil
}

// RequireDatabase reports a configuration error when no record store URL is set
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
