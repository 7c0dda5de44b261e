package routeguard

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/apipaths"
	"github.com/applytrack/internal/session"
)

// ErrorConfiguration is the error code sent to the error page when the
// resolver cannot check tokens at all.
const ErrorConfiguration = "Configuration"

// Options configures a Guard. Zero values fall back to the application defaults.
type Options struct {
	Routes     Routes
	Resolver   session.Resolver
	SignInPath string
	ErrorPath  string
	Metrics    *Metrics
	Logger     *slog.Logger
}

// Guard redirects requests for protected paths that carry no session
type Guard struct {
	routes     Routes
	resolver   session.Resolver
	signInPath string
	errorPath  string
	metrics    *Metrics
	logger     *slog.Logger
}

// New creates a guard. opts.Resolver is required.
func New(opts Options) *Guard {
	g := &Guard{
		routes:     opts.Routes,
		resolver:   opts.Resolver,
		signInPath: opts.SignInPath,
		errorPath:  opts.ErrorPath,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if len(g.routes.prefixes) == 0 {
		g.routes = DefaultRoutes()
	}
	if g.signInPath == "" {
		g.signInPath = apipaths.SignIn
	}
	if g.errorPath == "" {
		g.errorPath = apipaths.AuthError
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Routes returns the route set the guard enforces
func (g *Guard) Routes() Routes {
	return g.routes
}

// Middleware returns the gin handler enforcing the guard
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if !g.routes.Matches(path) {
			g.metrics.observe(DecisionPublic)
			c.Next()
			return
		}

		req, sess, err := g.resolver.Resolve(c.Writer, c.Request)
		if req != nil {
			c.Request = req
		}

		if err != nil {
			g.logger.ErrorContext(c.Request.Context(), "route guard: cannot resolve session",
				"path", path,
				"error", err,
			)
			g.metrics.observe(DecisionDeny)
			c.Redirect(http.StatusTemporaryRedirect, g.errorURL(ErrorConfiguration))
			c.Abort()
			return
		}

		if !g.routes.Authorized(path, sess != nil) {
			g.logger.WarnContext(c.Request.Context(), "route guard: session required",
				"method", c.Request.Method,
				"path", path,
			)
			g.metrics.observe(DecisionDeny)
			c.Redirect(http.StatusTemporaryRedirect, g.signInURL(c.Request))
			c.Abort()
			return
		}

		g.metrics.observe(DecisionAllow)
		c.Next()
	}
}

// signInURL points at the sign-in page with the original request as callback
func (g *Guard) signInURL(r *http.Request) string {
	q := url.Values{}
	q.Set("callbackUrl", r.URL.RequestURI())
	return g.signInPath + "?" + q.Encode()
}

func (g *Guard) errorURL(code string) string {
	q := url.Values{}
	q.Set("error", code)
	return g.errorPath + "?" + q.Encode()
}

// Passthrough is installed instead of a guard when auth is disabled
func Passthrough() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}
