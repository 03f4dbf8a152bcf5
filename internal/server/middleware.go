package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// rateLimit applies the fixed-window limiter to the AI endpoints. Denials
// answer 429 with a retry hint in both the body and the Retry-After header.
func (s *Server) rateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryAfter := s.limiter.Allow(clientKey(c.Request()))
			if allowed {
				return next(c)
			}

			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			return c.JSON(http.StatusTooManyRequests, struct {
				Error      string `json:"error"`
				Message    string `json:"message"`
				RetryAfter int    `json:"retryAfter"`
			}{
				Error:      "rate_limited",
				Message:    "Too many requests, slow down",
				RetryAfter: seconds,
			})
		}
	}
}

// clientKey derives the limiter key from the best client-identifying header
// available. Unidentifiable clients share one "unknown" bucket; an accepted
// imprecision behind some proxies.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}
	return "unknown"
}
