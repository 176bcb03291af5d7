package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safestreet/account-service/internal/api/metrics"
)

// AttemptLimiter abstracts the Redis-backed attempt counter.
type AttemptLimiter interface {
	Allow(ctx context.Context, scope, client string) (bool, error)
}

// RateLimit caps attempts per client on credential endpoints. The limiter
// fails open: if the counter is unreachable the request proceeds with a
// warning, since availability beats throttling for a login path.
func RateLimit(limiter AttemptLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			allowed, err := limiter.Allow(c.Request().Context(), strings.TrimPrefix(route, "/"), clientIP(c))
			if err != nil {
				log.Warn().Err(err).Str("path", route).Msg("attempt limiter unavailable, failing open")
				return next(c)
			}
			if !allowed {
				metrics.RateLimitedTotal.WithLabelValues(route).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, try again later")
			}
			return next(c)
		}
	}
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return c.Request().RemoteAddr
}
