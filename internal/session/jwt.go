package session

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt"
)

// CookieName is the cookie go-pkgz/auth stores its JWT in
const CookieName = "JWT"

// JWTResolver verifies HMAC-signed tokens issued by another service that
// shares the signing secret. The token comes from the JWT cookie or a Bearer
// Authorization header.
type JWTResolver struct {
	secret []byte
}

// NewJWTResolver creates a verify-only resolver
func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (j *JWTResolver) Resolve(_ http.ResponseWriter, r *http.Request) (*http.Request, *Session, error) {
	if len(j.secret) == 0 {
		return r, nil, ErrMisconfigured
	}

	raw := extractToken(r)
	if raw == "" {
		return r, nil, nil
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !tkn.Valid {
		return r, nil, nil
	}

	sess := fromClaims(claims)
	if sess == nil {
		return r, nil, nil
	}
	return r.WithContext(WithSession(r.Context(), sess)), sess, nil
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// fromClaims accepts the go-pkgz/auth layout ({"user": {"id", "name", "picture"}}),
// a plain string user claim, or a bare subject.
func fromClaims(claims jwt.MapClaims) *Session {
	switch u := claims["user"].(type) {
	case map[string]interface{}:
		id, _ := u["id"].(string)
		if id == "" {
			return nil
		}
		name, _ := u["name"].(string)
		picture, _ := u["picture"].(string)
		return &Session{UserID: id, Name: name, Picture: picture}
	case string:
		if u != "" {
			return &Session{UserID: u, Name: u}
		}
	}
	if sub, _ := claims["sub"].(string); sub != "" {
		return &Session{UserID: sub}
	}
	return nil
}
