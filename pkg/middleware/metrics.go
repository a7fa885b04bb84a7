package middleware

import (
	"net/http"
	"strings"
	"time"

	"aerolabel/pkg/metrics"
)

const lockStatusPrefix = "/api/v1/locks/status/"

// RequestMetrics records request counts and latency per route.
func RequestMetrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.Observe(r.Method, routeLabel(r.URL.Path), wrapped.statusCode, time.Since(start).Seconds())
		})
	}
}

// routeLabel collapses path parameters so resource IDs never become label values.
func routeLabel(path string) string {
	if strings.HasPrefix(path, lockStatusPrefix) {
		return lockStatusPrefix + ":resource_id"
	}
	return path
}
