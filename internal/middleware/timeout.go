package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds page handlers. It must not wrap /ws: http.TimeoutHandler
// does not support hijacking.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "The auth service is taking too long to answer. Please try again.")
	}
}
