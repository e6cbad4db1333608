package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func readControlToken(t *testing.T) string {
	return signToken(t, testSecret, jwt.MapClaims{
		"sub":    "operator-1",
		"scopes": []string{ScopeRead, ScopeControl},
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
}

func TestVerifyTokenValid(t *testing.T) {
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}

	claims, err := v.VerifyToken(readControlToken(t))
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Subject != "operator-1" {
		t.Errorf("Subject = %q, want operator-1", claims.Subject)
	}
	if !claims.HasScope(ScopeControl) {
		t.Error("Expected control scope")
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{
			"sub": "x", "scopes": []string{ScopeRead},
		})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"sub": "x", "scopes": []string{ScopeRead},
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"missing sub", signToken(t, testSecret, jwt.MapClaims{
			"scopes": []string{ScopeRead},
		})},
		{"missing scopes", signToken(t, testSecret, jwt.MapClaims{
			"sub": "x",
		})},
		{"unknown scope", signToken(t, testSecret, jwt.MapClaims{
			"sub": "x", "scopes": []string{"admin"},
		})},
		{"empty scopes", signToken(t, testSecret, jwt.MapClaims{
			"sub": "x", "scopes": []string{},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.VerifyToken(tt.token); err == nil {
				t.Error("Expected verification failure")
			}
		})
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier(""); err == nil {
		t.Error("Expected error for empty secret")
	}
}

func doRequest(handler http.HandlerFunc, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/radio/frequency", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRequireScopeAllowsAuthorized(t *testing.T) {
	v, _ := NewVerifier(testSecret)
	mw := NewMiddleware(v)

	called := false
	handler := mw.RequireScope(ScopeControl, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if claims := ClaimsFromRequest(r); claims == nil || claims.Subject != "operator-1" {
			t.Error("Expected claims in request context")
		}
	})

	rec := doRequest(handler, readControlToken(t))
	if !called {
		t.Fatal("Handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
}

func TestRequireScopeRejectsMissingToken(t *testing.T) {
	v, _ := NewVerifier(testSecret)
	mw := NewMiddleware(v)

	handler := mw.RequireScope(ScopeControl, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not be called")
	})

	rec := doRequest(handler, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", rec.Code)
	}
}

func TestRequireScopeRejectsInsufficientScope(t *testing.T) {
	v, _ := NewVerifier(testSecret)
	mw := NewMiddleware(v)

	readOnly := signToken(t, testSecret, jwt.MapClaims{
		"sub":    "viewer-1",
		"scopes": []string{ScopeRead},
	})

	handler := mw.RequireScope(ScopeControl, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not be called")
	})

	rec := doRequest(handler, readOnly)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", rec.Code)
	}
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	mw := NewMiddleware(nil)

	called := false
	handler := mw.RequireScope(ScopeControl, func(w http.ResponseWriter, r *http.Request) {
		called = true
		if ClaimsFromRequest(r) != nil {
			t.Error("Expected no claims when auth is disabled")
		}
	})

	rec := doRequest(handler, "")
	if !called {
		t.Fatal("Handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
}
