package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

// Middleware gates HTTP handlers on bearer-token scopes. A nil verifier
// means auth is disabled and every request passes with no claims.
type Middleware struct {
	verifier *Verifier
}

// NewMiddleware creates the middleware. Pass nil to disable verification.
func NewMiddleware(verifier *Verifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// RequireScope wraps next so it only runs for requests whose token carries
// the scope. With verification disabled the request passes untouched.
func (m *Middleware) RequireScope(scope string, next http.HandlerFunc) http.HandlerFunc {
	if m.verifier == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		claims, err := m.verifier.VerifyToken(token)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		if !claims.HasScope(scope) {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// ClaimsFromRequest returns the verified claims, or nil when auth is
// disabled or the handler is unauthenticated.
func ClaimsFromRequest(r *http.Request) *Claims {
	claims, ok := r.Context().Value(claimsKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"result":        "error",
		"code":          code,
		"message":       message,
		"correlationId": uuid.NewString(),
	})
}
