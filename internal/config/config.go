package config

import (
	"errors"
	"os"
	"strings"
)

// Auth modes
const (
	AuthModeService = "service" // go-pkgz/auth issues and verifies sessions
	AuthModeJWT     = "jwt"     // verify-only, tokens are issued elsewhere
)

var (
	ErrJWTSecretRequired = errors.New("JWT_SECRET is required when auth is enabled")
	ErrNoOAuthProvider   = errors.New("at least one OAuth provider must be configured in service auth mode")
	ErrUnknownAuthMode   = errors.New("AUTH_MODE must be \"service\" or \"jwt\"")
)

// Config holds the application configuration
type Config struct {
	Environment     string
	LogJSON         bool
	ServerAddress   string
	DatabasePath    string
	WebDistDir      string
	CleanupSchedule string // cron expression for database housekeeping, "off" disables it
	Auth            AuthConfig
	CORS            CORSConfig
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled      bool
	Mode         string
	JWTSecret    string
	SecureCookie bool
	BaseURL      string // Base URL for OAuth callbacks (e.g., http://localhost:8080)
	GitHub       OAuthProviderConfig
	Google       OAuthProviderConfig
}

// OAuthProviderConfig holds the credentials of a single OAuth provider
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	AllowedUsers []string // empty means any user the provider authenticates
}

// Configured reports whether both client credentials are set.
func (p OAuthProviderConfig) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	environment := getEnv("APP_ENV", "production")

	// Default: JSON in production, text in development
	logJSON := environment != "development"
	if v := os.Getenv("LOG_JSON"); v != "" {
		logJSON = v == "true"
	}

	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://localhost:8080")

	cfg := &Config{
		Environment:     environment,
		LogJSON:         logJSON,
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/applytrack.db"),
		WebDistDir:      getEnv("WEB_DIST_DIR", "./web/dist"),
		CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 3 * * *"),
		Auth: AuthConfig{
			Enabled:      getEnv("AUTH_ENABLED", "false") == "true",
			Mode:         strings.ToLower(getEnv("AUTH_MODE", AuthModeService)),
			JWTSecret:    os.Getenv("JWT_SECRET"),
			SecureCookie: getEnv("AUTH_SECURE_COOKIE", "false") == "true",
			BaseURL:      strings.TrimSuffix(getEnv("AUTH_BASE_URL", "http://localhost:8080"), "/"),
			GitHub: OAuthProviderConfig{
				ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
				ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
				AllowedUsers: parseCommaSeparatedList(os.Getenv("GITHUB_ALLOWED_USERS")),
			},
			Google: OAuthProviderConfig{
				ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: parseCommaSeparatedList(corsOrigins),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot produce a working server.
func (c *Config) Validate() error {
	if !c.Auth.Enabled {
		return nil
	}
	if c.Auth.Mode != AuthModeService && c.Auth.Mode != AuthModeJWT {
		return ErrUnknownAuthMode
	}
	if c.Auth.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if c.Auth.Mode == AuthModeService && !c.Auth.GitHub.Configured() && !c.Auth.Google.Configured() {
		return ErrNoOAuthProvider
	}
	return nil
}

// parseCommaSeparatedList splits a comma-separated string into a slice
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return []string{}
	}

	items := strings.Split(s, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
