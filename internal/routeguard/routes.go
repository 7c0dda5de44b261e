// Package routeguard keeps unauthenticated users out of the protected parts
// of the site.
//
// Two lists drive it. The matcher patterns decide whether the guard looks at
// a request at all; the protected prefixes decide whether a token is needed.
// Both are built from the same prefixes, so a prefix cannot be protected
// without also being matched.
package routeguard

import (
	"strings"

	"github.com/applytrack/internal/apipaths"
)

const matcherSuffix = "/:path*"

// Routes is a set of protected path prefixes.
type Routes struct {
	prefixes []string
}

// DefaultRoutes returns the application's protected prefixes.
func DefaultRoutes() Routes {
	return NewRoutes(apipaths.Protected...)
}

// NewRoutes builds a route set. Prefixes are compared case-sensitively.
func NewRoutes(prefixes ...string) Routes {
	cp := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p != "" {
			cp = append(cp, p)
		}
	}
	return Routes{prefixes: cp}
}

// Prefixes returns a copy of the protected prefixes.
func (rt Routes) Prefixes() []string {
	return append([]string(nil), rt.prefixes...)
}

// MatcherPatterns returns one wildcard pattern per prefix, e.g. "/jobs/:path*".
func (rt Routes) MatcherPatterns() []string {
	patterns := make([]string, len(rt.prefixes))
	for i, p := range rt.prefixes {
		patterns[i] = p + matcherSuffix
	}
	return patterns
}

// Matches reports whether a matcher pattern covers path. "/:path*" matches
// zero or more whole segments, so "/jobs" and "/jobs/42" match "/jobs/:path*"
// but "/jobsearch" does not.
func (rt Routes) Matches(path string) bool {
	for _, p := range rt.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// IsProtected reports whether path starts with a protected prefix.
func (rt Routes) IsProtected(path string) bool {
	for _, p := range rt.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Authorized applies the decision rule: protected paths need a token,
// everything else is allowed.
func (rt Routes) Authorized(path string, hasToken bool) bool {
	if !rt.IsProtected(path) {
		return true
	}
	return hasToken
}
