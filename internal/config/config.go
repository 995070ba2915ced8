package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service holding the relay secret.
const KeyringService = "folio"

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string

	// Mail relay
	Email           string // relay sender address
	EmailSecret     string
	SMTPHost        string
	SMTPPort        int
	SMTPStartTLS    bool
	ContactName     string // display name of the contact recipient
	ContactFromName string

	// Sessions
	SessionKey string
	SessionTTL time.Duration

	// Site
	LoginPath  string
	ResumePath string

	// One-time admin bootstrap
	AdminID       string
	AdminPassword string
}

// lookupSecret reads the relay secret from the OS keyring.
var lookupSecret = keyring.Get

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// Missing required values are reported by Validate.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		Email:           os.Getenv("EMAIL"),
		EmailSecret:     os.Getenv("EMAIL_APP_PASS"),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnvInt("SMTP_PORT", 587),
		SMTPStartTLS:    getEnv("SMTP_STARTTLS", "true") == "true",
		ContactName:     os.Getenv("CONTACT_NAME"),
		ContactFromName: getEnv("CONTACT_FROM_NAME", "Your Portfolio Contact"),
		SessionKey:      os.Getenv("PORTFOLIO_KEY"),
		SessionTTL:      getEnvDuration("SESSION_TTL", 12*time.Hour),
		LoginPath:       getEnv("LOGIN_PATH", "/login"),
		ResumePath:      getEnv("RESUME_PATH", "Resume.pdf"),
		AdminID:         os.Getenv("ADMIN_ID"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}

	// Fall back to the keyring for the relay secret
	if cfg.EmailSecret == "" && cfg.Email != "" {
		if secret, err := lookupSecret(KeyringService, cfg.Email); err == nil {
			cfg.EmailSecret = secret
		}
	}

	if !strings.HasPrefix(cfg.LoginPath, "/") {
		cfg.LoginPath = "/" + cfg.LoginPath
	}

	return cfg
}

// Validate reports every missing required value.
func (c *Config) Validate() error {
	var errs []error
	if c.Email == "" {
		errs = append(errs, errors.New("EMAIL is required"))
	}
	if c.EmailSecret == "" {
		errs = append(errs, errors.New("EMAIL_APP_PASS is required"))
	}
	if c.SessionKey == "" {
		errs = append(errs, errors.New("PORTFOLIO_KEY is required"))
	}
	if c.IsProduction() && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if (c.AdminID == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_ID and ADMIN_PASSWORD must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
