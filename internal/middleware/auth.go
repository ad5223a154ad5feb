// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey ContextKey = "user_id"
	// EmailKey is the context key for the authenticated user's email.
	EmailKey ContextKey = "email"
)

// Claims represents JWT claims issued at login.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

var errNoToken = errors.New("missing authorization header")

// Auth creates JWT authentication middleware that rejects anonymous requests.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, true)
}

// OptionalAuth creates JWT authentication middleware that lets anonymous
// requests through. A token that is present but invalid is still rejected.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return authenticate(jwtSecret, false)
}

func authenticate(jwtSecret string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseToken(r.Header.Get("Authorization"), jwtSecret)
			switch {
			case errors.Is(err, errNoToken) && !required:
				next.ServeHTTP(w, r)
				return
			case err != nil:
				writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(header, jwtSecret string) (*Claims, error) {
	if header == "" {
		return nil, errNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, errors.New("invalid authorization header format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetUserID gets user ID from context.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// GetEmail gets the user's email from context.
func GetEmail(ctx context.Context) string {
	if v, ok := ctx.Value(EmailKey).(string); ok {
		return v
	}
	return ""
}
