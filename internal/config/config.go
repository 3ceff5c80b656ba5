package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	AppEnv       string
	AppURL       string
	Port         string
	SupportEmail string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	SessionSecret     string
	SessionExpiry     time.Duration
	VerifyTokenSecret string
	VerifyTokenExpiry time.Duration
	AuthCodeTTL       time.Duration
	OAuthStateTTL     time.Duration
	AuthCodeAcceptAny bool // development-only shortcut, refused in production

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Code store (optional Redis backend for multi-instance deployments)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:      envString("APP_NAME", "UnitNode"),
		AppEnv:       envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:       envRequired("APP_URL"), // Required: base URL for email links and OAuth redirects
		Port:         envString("PORT", "8090"),
		SupportEmail: envString("SUPPORT_EMAIL", "support@unitnode.com"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/unitnode.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		SessionSecret:     envRequired("SESSION_SECRET"),
		SessionExpiry:     envDuration("SESSION_EXPIRY", 168*time.Hour), // 7 days
		VerifyTokenSecret: envRequired("EMAIL_VERIFICATION_TOKEN_SECRET"),
		VerifyTokenExpiry: envDuration("EMAIL_VERIFICATION_TOKEN_EXPIRY", 24*time.Hour),
		AuthCodeTTL:       envDuration("AUTH_CODE_TTL", 5*time.Minute),
		OAuthStateTTL:     envDuration("OAUTH_STATE_TTL", 10*time.Minute),
		AuthCodeAcceptAny: envBool("AUTH_CODE_ACCEPT_ANY", false),

		// OAuth
		GoogleClientID:     envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: envString("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  envString("GOOGLE_REDIRECT_URI", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@unitnode.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Code store
		RedisAddr:     envString("REDIS_ADDR", ""),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = cfg.AppURL + "/api/auth/google/callback"
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production
// deployments. Development allows some services (like email) to use fallback
// modes for easier local testing.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.AuthCodeAcceptAny {
		slog.Error("AUTH_CODE_ACCEPT_ANY must not be enabled in production")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
