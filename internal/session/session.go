// Package session turns whatever credential a request carries into a
// Session. Issuing and verifying the credential is left to the auth
// framework behind each Resolver.
package session

import (
	"context"
	"errors"
	"net/http"
)

// ErrMisconfigured is returned by a Resolver that cannot check any token at all.
var ErrMisconfigured = errors.New("session resolver is misconfigured")

// Session is the authenticated caller as seen by handlers
type Session struct {
	UserID  string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Resolver decorates a request with the caller's session.
//
// A nil Session with a nil error means the request carries no usable token.
// The returned request replaces r for the rest of the chain.
type Resolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*http.Request, *Session, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(w http.ResponseWriter, r *http.Request) (*http.Request, *Session, error)

func (f ResolverFunc) Resolve(w http.ResponseWriter, r *http.Request) (*http.Request, *Session, error) {
	return f(w, r)
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// Static returns a Resolver that attaches s to every request. It stands in
// for real authentication when auth is disabled.
func Static(s *Session) Resolver {
	return ResolverFunc(func(_ http.ResponseWriter, r *http.Request) (*http.Request, *Session, error) {
		return r.WithContext(WithSession(r.Context(), s)), s, nil
	})
}
