package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	allowMethods = "GET,POST,OPTIONS"
	allowHeaders = "Content-Type,Authorization,X-Odiadev-Key,X-Odiadev-Ts,X-Odiadev-Signature"
	maxAge       = "86400"
)

// corsGate applies the allowed-origin policy to every request and
// short-circuits preflights before any other handler runs. A request from
// an origin not on the list is answered with the first configured origin —
// never the requester's own — so a configured list is never silently
// widened. An empty list allows everything.
func corsGate(allowedOrigins []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)

			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, resolveAllowOrigin(allowedOrigins, origin))
			header.Add(echo.HeaderVary, echo.HeaderOrigin)
			header.Set(echo.HeaderAccessControlAllowMethods, allowMethods)
			header.Set(echo.HeaderAccessControlAllowHeaders, allowHeaders)
			header.Set(echo.HeaderAccessControlMaxAge, maxAge)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

func resolveAllowOrigin(allowedOrigins []string, origin string) string {
	if len(allowedOrigins) == 0 {
		return "*"
	}
	if origin != "" {
		for _, pattern := range allowedOrigins {
			if matchOrigin(pattern, origin) {
				return origin
			}
		}
	}
	return allowedOrigins[0]
}

// matchOrigin supports exact entries and a single * wildcard, e.g.
// "https://*.odia.dev".
func matchOrigin(pattern, origin string) bool {
	if pattern == "*" {
		return true
	}
	star := strings.Index(pattern, "*")
	if star < 0 {
		return pattern == origin
	}

	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(origin) < len(prefix)+len(suffix) {
		return false
	}
	return strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix)
}
