package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leavedesk/internal/domain/auth"
)

const testSecret = "test-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, auth.Claims{
		UserID: "u1",
		Email:  "u1@example.com",
		Role:   role,
	}, time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func protected(t *testing.T, guard func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return Auth(testSecret)(guard(inner))
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	handler := protected(t, RequireAuth)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	handler := protected(t, RequireAuth)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	handler := protected(t, RequireAuth)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, auth.RoleEmployee))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsEmployee(t *testing.T) {
	handler := protected(t, RequireAdmin)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, auth.RoleEmployee))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireAdminAcceptsHRAndAdmin(t *testing.T) {
	handler := protected(t, RequireAdmin)

	for _, role := range []string{auth.RoleHR, auth.RoleAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("role %s: expected 204, got %d", role, rec.Code)
		}
	}
}
