package config

import (
	"errors"
	"os"
	"reflect"
	"testing"
)

var configEnvKeys = []string{
	"APP_ENV",
	"LOG_JSON",
	"SERVER_ADDRESS",
	"DATABASE_PATH",
	"WEB_DIST_DIR",
	"CLEANUP_SCHEDULE",
	"CORS_ALLOWED_ORIGINS",
	"AUTH_ENABLED",
	"AUTH_MODE",
	"JWT_SECRET",
	"AUTH_SECURE_COOKIE",
	"AUTH_BASE_URL",
	"GITHUB_CLIENT_ID",
	"GITHUB_CLIENT_SECRET",
	"GITHUB_ALLOWED_USERS",
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		originalEnv[k] = os.Getenv(k)
	}

	// Cleanup: restore original env vars
	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	tests := []struct {
		name        string
		env         map[string]string
		wantErr     error
		checkFields func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			checkFields: func(t *testing.T, cfg *Config) {
				if cfg.Environment != "production" {
					t.Errorf("Environment = %q, want %q", cfg.Environment, "production")
				}
				if !cfg.LogJSON {
					t.Error("LogJSON = false, want true in production")
				}
				if cfg.ServerAddress != ":8080" {
					t.Errorf("ServerAddress = %q, want %q", cfg.ServerAddress, ":8080")
				}
				if cfg.DatabasePath != "./data/applytrack.db" {
					t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "./data/applytrack.db")
				}
				if cfg.CleanupSchedule != "0 3 * * *" {
					t.Errorf("CleanupSchedule = %q, want nightly default", cfg.CleanupSchedule)
				}
				if cfg.Auth.Enabled {
					t.Error("Auth.Enabled = true, want false")
				}
				if cfg.Auth.Mode != AuthModeService {
					t.Errorf("Auth.Mode = %q, want %q", cfg.Auth.Mode, AuthModeService)
				}
				if len(cfg.CORS.AllowedOrigins) != 3 {
					t.Errorf("len(CORS.AllowedOrigins) = %d, want 3", len(cfg.CORS.AllowedOrigins))
				}
			},
		},
		{
			name: "development logs as text unless overridden",
			env: map[string]string{
				"APP_ENV": "development",
			},
			checkFields: func(t *testing.T, cfg *Config) {
				if cfg.LogJSON {
					t.Error("LogJSON = true, want false in development")
				}
			},
		},
		{
			name: "LOG_JSON overrides environment default",
			env: map[string]string{
				"APP_ENV":  "development",
				"LOG_JSON": "true",
			},
			checkFields: func(t *testing.T, cfg *Config) {
				if !cfg.LogJSON {
					t.Error("LogJSON = false, want true")
				}
			},
		},
		{
			name: "service mode with github",
			env: map[string]string{
				"AUTH_ENABLED":         "true",
				"JWT_SECRET":           "s3cret",
				"AUTH_BASE_URL":        "https://track.example.com/",
				"GITHUB_CLIENT_ID":     "gh-id",
				"GITHUB_CLIENT_SECRET": "gh-secret",
				"GITHUB_ALLOWED_USERS": "alice, bob ,,",
			},
			checkFields: func(t *testing.T, cfg *Config) {
				if !cfg.Auth.Enabled {
					t.Error("Auth.Enabled = false, want true")
				}
				if cfg.Auth.BaseURL != "https://track.example.com" {
					t.Errorf("Auth.BaseURL = %q, want trailing slash trimmed", cfg.Auth.BaseURL)
				}
				want := []string{"alice", "bob"}
				if !reflect.DeepEqual(cfg.Auth.GitHub.AllowedUsers, want) {
					t.Errorf("GitHub.AllowedUsers = %v, want %v", cfg.Auth.GitHub.AllowedUsers, want)
				}
				if cfg.Auth.Google.Configured() {
					t.Error("Google.Configured() = true, want false")
				}
			},
		},
		{
			name: "jwt mode needs no provider",
			env: map[string]string{
				"AUTH_ENABLED": "true",
				"AUTH_MODE":    "JWT",
				"JWT_SECRET":   "s3cret",
			},
			checkFields: func(t *testing.T, cfg *Config) {
				if cfg.Auth.Mode != AuthModeJWT {
					t.Errorf("Auth.Mode = %q, want %q", cfg.Auth.Mode, AuthModeJWT)
				}
			},
		},
		{
			name: "missing secret",
			env: map[string]string{
				"AUTH_ENABLED":         "true",
				"GITHUB_CLIENT_ID":     "gh-id",
				"GITHUB_CLIENT_SECRET": "gh-secret",
			},
			wantErr: ErrJWTSecretRequired,
		},
		{
			name: "service mode without provider",
			env: map[string]string{
				"AUTH_ENABLED": "true",
				"JWT_SECRET":   "s3cret",
			},
			wantErr: ErrNoOAuthProvider,
		},
		{
			name: "unknown mode",
			env: map[string]string{
				"AUTH_ENABLED": "true",
				"AUTH_MODE":    "basic",
				"JWT_SECRET":   "s3cret",
			},
			wantErr: ErrUnknownAuthMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear all env vars first
			for _, k := range configEnvKeys {
				os.Unsetenv(k)
			}
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkFields != nil {
				tt.checkFields(t, cfg)
			}
		})
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
	}

	for _, tt := range tests {
		got := parseCommaSeparatedList(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseCommaSeparatedList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
