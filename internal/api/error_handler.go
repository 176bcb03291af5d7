package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safestreet/account-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all JSON API errors.
type errorResponse struct {
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the
//     client: 5xx bodies carry an opaque message only.
//   - Renders a consistent JSON envelope: {"message": "<text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to deterministic status codes with safe,
	// non-leaking messages.
	if ce, ok := domain.IsConflict(err); ok {
		return http.StatusBadRequest, ce.Error()
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "name, email and password are required"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid email/username or password"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusUnauthorized, "Please verify your email first."
	// Expired and invalid collapse to one message so callers cannot probe
	// whether a signature or an expiry failed.
	case errors.Is(err, domain.ErrTokenExpired), errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusBadRequest, "Invalid or expired verification link."
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized, "invalid token"
	}

	// Unexpected error (store, mail, bugs): log the real cause, return an
	// opaque message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
