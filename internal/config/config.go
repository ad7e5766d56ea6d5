package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

type Config struct {
	Port               string
	Env                string
	LogLevel           slog.Level
	CorsAllowedOrigins []string

	StoreBackend             string
	DatabaseURL              string
	SQLitePath               string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	// AdminIDs seeds admin grants for the memory and sqlite backends.
	AdminIDs []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration

	FrontendURL string
	ProfilePath string

	// Requests per minute per IP.
	RateLimitPublic int
	RateLimitLogin  int
}

// DevelopmentSecret signs sessions when APP_ENV=development and no
// JWT_SECRET is set. Only the memory backend accepts it.
const DevelopmentSecret = "development-secret"

// Development reports whether the service runs with local defaults.
func (c Config) Development() bool {
	return c.Env == "development"
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		Env:                strings.ToLower(getEnv("APP_ENV", "production")),
		CorsAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		StoreBackend:             strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		SQLitePath:               getEnv("SQLITE_PATH", "portfolyo.db"),
		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		AdminIDs:                 splitList(getEnv("ADMIN_IDS", "")),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "portfolyo"),

		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		ProfilePath: getEnv("PROFILE_PATH", ""),
	}

	if len(cfg.CorsAllowedOrigins) == 0 {
		cfg.CorsAllowedOrigins = []string{cfg.FrontendURL}
	}

	var err error
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPublic, err = getEnvInt("RATE_LIMIT_PUBLIC", 60); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitLogin, err = getEnvInt("RATE_LIMIT_LOGIN", 10); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendFirestore:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	// Session cookies are credentialed, so a wildcard would let any site
	// read the API as the signed-in user.
	if !c.Development() {
		for _, origin := range c.CorsAllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS may not contain * outside development")
			}
		}
	}

	if c.JWTSecret == "" {
		if !c.Development() {
			return fmt.Errorf("JWT_SECRET is required unless APP_ENV=development")
		}
		if c.StoreBackend != BackendMemory {
			return fmt.Errorf("JWT_SECRET is required for the %s backend", c.StoreBackend)
		}
		c.JWTSecret = DevelopmentSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return d, nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
