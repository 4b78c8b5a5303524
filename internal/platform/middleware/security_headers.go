package middleware

import (
	"github.com/labstack/echo/v4"
)

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	// Bodies carry patient records.
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
}

// SecurityHeaders sets hardening headers on every response. HSTS is only
// sent over HTTPS, directly or behind a proxy that sets X-Forwarded-Proto.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			if c.Scheme() == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			return next(c)
		}
	}
}
