package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safestreet/account-service/internal/api/middleware"
	"github.com/safestreet/account-service/internal/core/domain"
	"github.com/safestreet/account-service/internal/core/ports"
)

// stubTokenService only accepts one hard-coded session token.
type stubTokenService struct{}

func (stubTokenService) Issue(string, string, time.Duration) (string, error) {
	return "", nil
}

func (stubTokenService) Verify(token, expectedPurpose string) (string, error) {
	if token == "valid-session" && expectedPurpose == ports.PurposeSession {
		return "u42", nil
	}
	return "", domain.ErrTokenInvalid
}

func newProtectedServer(t *testing.T) (*echo.Echo, *string) {
	t.Helper()
	var seenUserID string

	e := echo.New()
	guard := middleware.Session(stubTokenService{})
	e.GET("/me", func(c echo.Context) error {
		seenUserID, _ = c.Get("user_id").(string)
		return c.NoContent(http.StatusOK)
	}, guard)
	return e, &seenUserID
}

func TestSession_ValidToken(t *testing.T) {
	e, seenUserID := newProtectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer valid-session")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if *seenUserID != "u42" {
		t.Errorf("user_id in context = %q, want u42", *seenUserID)
	}
}

func TestSession_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"no token part", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		// A verification-link token must not open a session: the stub only
		// accepts the session purpose, same as the real service.
		{"verification token", "Bearer verify-email-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, seenUserID := newProtectedServer(t)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if *seenUserID != "" {
				t.Errorf("handler ran with user_id %q", *seenUserID)
			}
		})
	}
}

func TestSession_CaseInsensitiveScheme(t *testing.T) {
	e, seenUserID := newProtectedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer valid-session")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seenUserID != "u42" {
		t.Errorf("user_id = %q", *seenUserID)
	}
}
