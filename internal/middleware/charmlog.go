// Package middleware holds echo middleware shared by the daemon's HTTP
// surfaces.
package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// CharmLog logs each request through charmbracelet/log instead of echo's
// built-in logger.
func CharmLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			log.Info("request",
				"method", req.Method,
				"uri", req.RequestURI,
				"status", res.Status,
				"duration", time.Since(start).Round(time.Microsecond),
			)
			return err
		}
	}
}
