package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/auth"
)

// Logger returns middleware writing one structured line per request.
// Health probes are not logged. When the request carries a valid token
// the acting user and role are attached, so clinic activity can be
// traced alongside the audit trail.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.URL.Path == "/health" || req.URL.Path == "/health/db" {
				return next(c)
			}

			start := time.Now()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			// The response status is not committed yet when the handler
			// returned an HTTPError; take the code from the error.
			status := c.Response().Status
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			ctx := c.Request().Context()
			if userID := auth.UserIDFromContext(ctx); userID != "" {
				evt = evt.
					Str("user_id", userID).
					Str("role", auth.RoleFromContext(ctx))
			}
			evt.Msg("request")

			return err
		}
	}
}
