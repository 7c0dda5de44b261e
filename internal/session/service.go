package session

import (
	"net/http"

	"github.com/go-pkgz/auth"
	"github.com/go-pkgz/auth/middleware"
	"github.com/go-pkgz/auth/token"
)

// ServiceResolver reads sessions issued by a go-pkgz/auth service.
//
// It runs the service's Trace middleware, which verifies the JWT cookie (and
// refreshes it when due) without rejecting the request, then reads the user
// that Trace attached to the request.
type ServiceResolver struct {
	authenticator middleware.Authenticator
}

// NewServiceResolver creates a resolver backed by svc. The authenticator is
// copied here, so providers must be added to svc first; tokens from
// providers it does not know are treated as absent.
func NewServiceResolver(svc *auth.Service) *ServiceResolver {
	return &ServiceResolver{authenticator: svc.Middleware()}
}

func (s *ServiceResolver) Resolve(w http.ResponseWriter, r *http.Request) (*http.Request, *Session, error) {
	traced := r
	handler := s.authenticator.Trace(http.HandlerFunc(func(_ http.ResponseWriter, tr *http.Request) {
		traced = tr
	}))
	// Refreshed cookies are written to w by the framework
	handler.ServeHTTP(w, r)

	user, err := token.GetUserInfo(traced)
	if err != nil {
		return traced, nil, nil
	}

	sess := fromUser(user)
	if sess == nil {
		return traced, nil, nil
	}
	return traced.WithContext(WithSession(traced.Context(), sess)), sess, nil
}

func fromUser(u token.User) *Session {
	if u.ID == "" {
		return nil
	}
	return &Session{
		UserID:  u.ID,
		Name:    u.Name,
		Picture: u.Picture,
	}
}
