package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pkgz/auth"
	"github.com/go-pkgz/auth/avatar"
	"github.com/go-pkgz/auth/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/applytrack/internal/cleanup"
	"github.com/applytrack/internal/config"
	"github.com/applytrack/internal/db"
	"github.com/applytrack/internal/domain"
	"github.com/applytrack/internal/routeguard"
	"github.com/applytrack/internal/session"
	"github.com/applytrack/internal/system"
)

// localSession is the single user of a deployment running with auth disabled
var localSession = &session.Session{UserID: "local", Name: "local"}

// Server wraps the HTTP server
type Server struct {
	config      *config.Config
	database    *db.DB
	engine      *gin.Engine
	authService *auth.Service
	resolver    session.Resolver
	guard       *routeguard.Guard
	registry    *prometheus.Registry
	stats       *system.Collector
	cleanup     *cleanup.CleanupManager
	logger      *slog.Logger
	httpServer  *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, database *db.DB) *Server {
	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	logger := slog.Default()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server := &Server{
		config:   cfg,
		database: database,
		engine:   engine,
		registry: registry,
		stats:    system.NewCollector(database),
		cleanup:  cleanup.NewCleanupManager(database, logger),
		logger:   logger,
	}
	server.stats.RegisterMetrics(registry)

	// Resolve sessions according to the configured auth mode
	switch {
	case !cfg.Auth.Enabled:
		server.resolver = session.Static(localSession)
	case cfg.Auth.Mode == config.AuthModeJWT:
		server.resolver = session.NewJWTResolver(cfg.Auth.JWTSecret)
	default:
		server.authService = initAuthService(cfg)
		server.resolver = session.NewServiceResolver(server.authService)
	}

	server.guard = routeguard.New(routeguard.Options{
		Routes:   routeguard.DefaultRoutes(),
		Resolver: server.resolver,
		Metrics:  routeguard.NewMetrics(registry),
		Logger:   logger,
	})

	// Middleware - order matters
	engine.Use(securityHeadersMiddleware())
	engine.Use(corsMiddleware(cfg))
	engine.Use(cacheControlMiddleware())
	engine.Use(loggerMiddleware())
	engine.Use(jsonBodyLimitMiddleware(maxBodySize))
	if cfg.Auth.Enabled {
		engine.Use(server.guard.Middleware())
	} else {
		logger.Warn("authentication disabled - protected routes are open", "prefixes", server.guard.Routes().Prefixes())
		engine.Use(routeguard.Passthrough())
	}

	// Request body size limit
	engine.MaxMultipartMemory = maxBodySize

	server.setupRoutes()

	addr := cfg.ServerAddress
	if addr == "" {
		addr = ":8080"
	}
	server.httpServer = &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	return server
}

// initAuthService initializes go-pkgz/auth with the configured OAuth providers
func initAuthService(cfg *config.Config) *auth.Service {
	// URL must include /auth prefix since that's where we mount the handlers
	opts := auth.Opts{
		SecretReader: token.SecretFunc(func(string) (string, error) {
			return cfg.Auth.JWTSecret, nil
		}),
		TokenDuration:  time.Hour * 24,     // Token valid for 24 hours
		CookieDuration: time.Hour * 24 * 7, // Cookie valid for 7 days
		Issuer:         "applytrack",
		URL:            cfg.Auth.BaseURL + "/auth",
		AvatarStore:    avatar.NewNoOp(), // No avatar storage
		SecureCookies:  cfg.Auth.SecureCookie,
		DisableXSRF:    true, // Sessions are only read by same-site pages and API calls
		Validator:      token.ValidatorFunc(allowedUserValidator(cfg.Auth.GitHub.AllowedUsers)),
	}

	authService := auth.NewService(opts)

	if cfg.Auth.GitHub.Configured() {
		authService.AddProvider("github", cfg.Auth.GitHub.ClientID, cfg.Auth.GitHub.ClientSecret)
	}
	if cfg.Auth.Google.Configured() {
		authService.AddProvider("google", cfg.Auth.Google.ClientID, cfg.Auth.Google.ClientSecret)
	}

	return authService
}

// allowedUserValidator rejects GitHub users missing from the allow list.
// An empty list admits everyone the provider authenticates.
func allowedUserValidator(allowed []string) func(string, token.Claims) bool {
	return func(_ string, claims token.Claims) bool {
		if claims.User == nil {
			slog.Warn("JWT validation failed: no user in claims")
			return false
		}
		if len(allowed) == 0 || !strings.HasPrefix(claims.User.ID, "github_") {
			return true
		}

		// GitHub usernames are case-insensitive
		username := strings.ToLower(claims.User.Name)
		for _, a := range allowed {
			if username == strings.ToLower(a) {
				return true
			}
		}

		slog.Warn("Unauthorized GitHub user attempted access", "username", username, "allowedUsers", len(allowed))
		return false
	}
}

const (
	maxBodySize     = 10 << 20 // 10MB max request body
	readTimeout     = 30 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// StartCleanup schedules database housekeeping unless the schedule is "off"
func (s *Server) StartCleanup() error {
	if s.config.CleanupSchedule == "" || s.config.CleanupSchedule == "off" {
		s.logger.Info("database cleanup disabled")
		return nil
	}
	return s.cleanup.Start(s.config.CleanupSchedule)
}

// Shutdown gracefully stops a server started with Run
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	s.cleanup.Stop(ctx)
	return err
}

// securityHeadersMiddleware adds security-related HTTP headers
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// HSTS (only if using HTTPS)
		if c.Request.TLS != nil {
			c.Writer.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// corsMiddleware adds CORS headers with configurable origin
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.CORS.AllowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheControlMiddleware keeps dynamic and session-dependent responses out of caches
func cacheControlMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		switch {
		case strings.HasPrefix(path, "/api/"), strings.HasPrefix(path, "/auth/"):
			c.Writer.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Writer.Header().Set("Pragma", "no-cache")
			c.Writer.Header().Set("Expires", "0")
		case strings.HasPrefix(path, "/assets/"):
			// Hashed build output never changes
			c.Writer.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}

		c.Next()
	}
}

// jsonBodyLimitMiddleware limits the size of JSON request bodies
func jsonBodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodDelete && c.Request.Method != http.MethodOptions {
			if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
				if c.Request.ContentLength > maxBytes {
					c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Request body too large"})
					return
				}
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			}
		}
		c.Next()
	}
}

// loggerMiddleware logs HTTP requests
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"remote_addr", c.ClientIP(),
		)
	}
}

// requireSession rejects API requests that reach a handler without a session.
// The route guard normally redirects first; this turns any gap into a JSON 401.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.currentSession(c); !ok {
			respondError(c, domain.ErrUnauthenticated, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentSession returns the caller's session, resolving it when the guard
// did not run for this path
func (s *Server) currentSession(c *gin.Context) (*session.Session, bool) {
	if sess, ok := session.FromContext(c.Request.Context()); ok {
		return sess, true
	}

	req, sess, err := s.resolver.Resolve(c.Writer, c.Request)
	if req != nil {
		c.Request = req
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to resolve session", "error", err)
		return nil, false
	}
	return sess, sess != nil
}

// AuthHandlers returns the auth HTTP handlers for mounting
func (s *Server) AuthHandlers() (http.Handler, http.Handler) {
	if s.authService == nil {
		return nil, nil
	}
	return s.authService.Handlers()
}
