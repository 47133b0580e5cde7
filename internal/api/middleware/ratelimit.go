package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/launchkit/boilerplate/internal/api/metrics"
)

// Limiter is the slice of the Redis rate limiter the middleware needs.
type Limiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}

// SignInRateLimit throttles sign-in attempts per client IP before the
// request reaches the Identity Service. Limiter errors fail open.
func SignInRateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			}
			if !allowed {
				metrics.SignInsTotal.WithLabelValues("rate_limited").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many sign-in attempts, try again later")
			}
			return next(c)
		}
	}
}
