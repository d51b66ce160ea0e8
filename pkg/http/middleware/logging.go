package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "CosmicClock/pkg/logger"
)

// RequestLogging logs one structured line per request. 5xx go out at error
// level, 4xx at warn, everything else at debug.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", routeOf(c)),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Int64("bytes", res.Size),
				applogger.Duration("duration_ms", time.Since(start)),
			}
			switch {
			case res.Status >= 500:
				l.Error("http request", append(fields, applogger.Error(err))...)
			case res.Status >= 400:
				l.Warn("http request", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
