package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/svpay/svpay-api/internal/middleware"
	"github.com/svpay/svpay-api/internal/pkg/jwt"
)

func newProtectedHandler(t *testing.T, secret string) (http.Handler, *jwt.Service) {
	t.Helper()

	jwtService := jwt.NewService(secret, time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := middleware.GetUsername(r.Context())
		w.Write([]byte(username))
	})
	return middleware.Auth(jwtService)(next), jwtService
}

func TestAuthMissingHeader(t *testing.T) {
	h, _ := newProtectedHandler(t, "secret")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMalformedHeader(t *testing.T) {
	h, _ := newProtectedHandler(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abcdef")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthValidToken(t *testing.T) {
	h, jwtService := newProtectedHandler(t, "secret")

	token, err := jwtService.GenerateAccessToken("operator")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "operator" {
		t.Fatalf("expected username in context, got %q", rec.Body.String())
	}
}

func TestAuthExpiredToken(t *testing.T) {
	expired := jwt.NewService("secret", -time.Minute)
	token, err := expired.GenerateAccessToken("operator")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	h, _ := newProtectedHandler(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}
