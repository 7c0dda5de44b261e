package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/applytrack/internal/config"
	"github.com/applytrack/internal/db"
	"github.com/applytrack/internal/http"
	"github.com/applytrack/internal/logger"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	envErr := godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet; fall back to the default handler
		logger.InitLogger("production", true).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	appLogger := logger.InitLogger(cfg.Environment, cfg.LogJSON)
	if envErr != nil {
		appLogger.Debug("no env file loaded", "file", envFile, "error", envErr)
	}

	appLogger.Info("configuration loaded",
		"environment", cfg.Environment,
		"address", cfg.ServerAddress,
		"auth_enabled", cfg.Auth.Enabled,
		"auth_mode", cfg.Auth.Mode,
		"github", cfg.Auth.GitHub.Configured(),
		"google", cfg.Auth.Google.Configured(),
	)
	if cfg.Auth.Enabled && cfg.Auth.GitHub.Configured() && len(cfg.Auth.GitHub.AllowedUsers) == 0 {
		appLogger.Warn("GitHub allow list is empty - any GitHub account can sign in")
	}

	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		appLogger.Error("failed to initialize database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer database.Close()

	server := http.NewServer(cfg, database)
	if err := server.StartCleanup(); err != nil {
		appLogger.Error("failed to schedule database cleanup", "error", err)
		os.Exit(1)
	}

	go func() {
		appLogger.Info("server listening", "address", cfg.ServerAddress)
		if err := server.Run(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			appLogger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	if err := server.Shutdown(context.Background()); err != nil {
		appLogger.Error("server shutdown error", "error", err)
	}
	appLogger.Info("server stopped")
}
