package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"go-auth-dashboard/internal/util"
)

const (
	maxAuthFormBytes = 64 << 10
	limiterIdleTTL   = 10 * time.Minute
	limiterGCAt      = 1000
)

type trackedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware meters page traffic per client address. Form posts
// under /auth/ each cost a remote API call, so they also draw from a
// stricter budget per address and one per submitted email; spreading
// password guesses over many addresses still hits the account budget.
type RateLimitMiddleware struct {
	pageRPM int
	authRPM int

	mu       sync.Mutex
	limiters map[string]*trackedLimiter
}

func NewRateLimitMiddleware(pageRPM int, authRPM int) *RateLimitMiddleware {
	if pageRPM <= 0 {
		pageRPM = 300
	}
	if authRPM <= 0 {
		authRPM = 20
	}

	return &RateLimitMiddleware{
		pageRPM:  pageRPM,
		authRPM:  authRPM,
		limiters: map[string]*trackedLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := extractClientIP(r)
		allowed := m.allow("page|"+clientIP, m.pageRPM)

		if allowed && isAuthSubmission(r) {
			allowed = m.allow("auth|"+clientIP, m.authRPM)
			if email := submittedEmail(w, r); allowed && email != "" {
				allowed = m.allow("account|"+email, m.authRPM)
			}
		}

		if !allowed {
			w.Header().Set("Retry-After", "60")
			writeFailure(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many attempts. Please wait a minute and try again.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAuthSubmission(r *http.Request) bool {
	return r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/auth/")
}

// submittedEmail parses the form early; the handler's later ParseForm is a
// no-op.
func submittedEmail(w http.ResponseWriter, r *http.Request) string {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthFormBytes)
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return util.NormalizeEmail(r.PostForm.Get("email"))
}

func (m *RateLimitMiddleware) allow(key string, rpm int) bool {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	tracked, ok := m.limiters[key]
	if !ok {
		tracked = &trackedLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)}
		m.limiters[key] = tracked
		m.evictIdleLocked(now)
	}
	tracked.lastSeen = now

	return tracked.limiter.AllowN(now, 1)
}

func (m *RateLimitMiddleware) evictIdleLocked(now time.Time) {
	if len(m.limiters) < limiterGCAt {
		return
	}

	cutoff := now.Add(-limiterIdleTTL)
	for key, tracked := range m.limiters {
		if tracked.lastSeen.Before(cutoff) {
			delete(m.limiters, key)
		}
	}
}

// extractClientIP trusts proxy headers; the front is meant to run locally or
// behind a reverse proxy that sets them.
func extractClientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}
	return r.RemoteAddr
}
