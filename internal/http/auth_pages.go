package http

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/applytrack/internal/apipaths"
	"github.com/applytrack/internal/config"
)

// Auth flow with go-pkgz/auth:
// 1. The route guard redirects to /auth/signin?callbackUrl=<original page>
// 2. The sign-in page links to /auth/<provider>/login?from=<callbackUrl>
// 3. The provider redirects back to /auth/<provider>/callback
// 4. go-pkgz/auth sets the JWT cookie and redirects to callbackUrl
// 5. /auth/<provider>/logout clears the session

var authTemplates = template.Must(template.New("auth").Parse(`
{{define "signin.html"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign in · applytrack</title></head>
<body>
<main>
<h1>Sign in</h1>
{{if .Notice}}<p>{{.Notice}}</p>{{end}}
<ul>
{{range .Providers}}<li><a href="{{.LoginURL}}">Sign in with {{.Label}}</a></li>
{{end}}</ul>
</main>
</body>
</html>{{end}}
{{define "error.html"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign-in error · applytrack</title></head>
<body>
<main>
<h1>Unable to sign in</h1>
<p>{{.Message}}</p>
<p><a href="{{.SignInURL}}">Try again</a></p>
</main>
</body>
</html>{{end}}
`))

// Error codes understood by the error page
const (
	authErrorConfiguration = "Configuration"
	authErrorAccessDenied  = "AccessDenied"
	authErrorVerification  = "Verification"
	authErrorDefault       = "Default"
)

var authErrorMessages = map[string]string{
	authErrorConfiguration: "There is a problem with the server configuration. Contact the administrator.",
	authErrorAccessDenied:  "You do not have permission to sign in.",
	authErrorVerification:  "The sign-in link is no longer valid. It may have been used already or it may have expired.",
	authErrorDefault:       "Something went wrong while signing you in.",
}

type providerLink struct {
	Label    string
	LoginURL string
}

type signInPageData struct {
	Notice    string
	Providers []providerLink
}

type errorPageData struct {
	Code      string
	Message   string
	SignInURL string
}

// authRoutes dispatches everything mounted under /auth
func (s *Server) authRoutes(authHandler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Param("path") {
		case "/signin":
			s.signInPage(c)
		case "/error":
			s.errorPage(c)
		default:
			if authHandler == nil {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: "Authentication provider is not enabled"})
				return
			}
			authHandler.ServeHTTP(c.Writer, c.Request)
		}
	}
}

// signInPage lists the configured providers. A caller that already has a
// session goes straight to its callback.
func (s *Server) signInPage(c *gin.Context) {
	callback := safeCallbackURL(c.Query("callbackUrl"))

	if _, ok := s.currentSession(c); ok {
		c.Redirect(http.StatusFound, callback)
		return
	}

	c.HTML(http.StatusOK, "signin.html", signInPageData{
		Notice:    signInNotice(s.config),
		Providers: providerLinks(s.config, callback),
	})
}

func (s *Server) errorPage(c *gin.Context) {
	code := c.Query("error")
	msg, ok := authErrorMessages[code]
	if !ok {
		code = authErrorDefault
		msg = authErrorMessages[authErrorDefault]
	}

	status := http.StatusOK
	switch code {
	case authErrorConfiguration:
		status = http.StatusInternalServerError
	case authErrorAccessDenied:
		status = http.StatusForbidden
	}

	c.HTML(status, "error.html", errorPageData{
		Code:      code,
		Message:   msg,
		SignInURL: apipaths.SignIn,
	})
}

func signInNotice(cfg *config.Config) string {
	switch {
	case !cfg.Auth.Enabled:
		return "Authentication is disabled on this server."
	case cfg.Auth.Mode == config.AuthModeJWT:
		return "Sign in through your organization's portal, then reload this page."
	default:
		return ""
	}
}

func providerLinks(cfg *config.Config, callback string) []providerLink {
	if !cfg.Auth.Enabled || cfg.Auth.Mode != config.AuthModeService {
		return nil
	}

	q := url.Values{}
	q.Set("from", callback)

	var links []providerLink
	if cfg.Auth.GitHub.Configured() {
		links = append(links, providerLink{Label: "GitHub", LoginURL: apipaths.ProviderLogin("github") + "?" + q.Encode()})
	}
	if cfg.Auth.Google.Configured() {
		links = append(links, providerLink{Label: "Google", LoginURL: apipaths.ProviderLogin("google") + "?" + q.Encode()})
	}
	return links
}

// safeCallbackURL only accepts local paths so the sign-in flow cannot be
// turned into an open redirect. Browsers drop tabs and newlines from URLs,
// so control characters and backslashes are refused anywhere in raw.
func safeCallbackURL(raw string) string {
	if raw == "" || strings.ContainsRune(raw, '\\') {
		return apipaths.Dashboard
	}
	for _, r := range raw {
		if unicode.IsControl(r) {
			return apipaths.Dashboard
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return apipaths.Dashboard
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return apipaths.Dashboard
	}
	if u.Path == apipaths.AuthPrefix || strings.HasPrefix(u.Path, apipaths.AuthPrefix+"/") {
		return apipaths.Dashboard
	}
	return raw
}
