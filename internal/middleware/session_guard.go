package middleware

import (
	"net/http"
	"net/url"

	"go-auth-dashboard/internal/guard"
)

const (
	EmailPagePath = "/auth/email"
	DashboardPath = "/dashboard"
)

// sessionState is the slice of the session provider the guards read.
type sessionState interface {
	IsLoading() bool
	IsAuthenticated() bool
}

const loadingPage = `<!doctype html>
<html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p>Loading...</p></body></html>
`

// RequireSession lets a request through only for a signed-in user. While the
// session is still resolving it serves a short placeholder asking the client
// to retry; signed-out users are sent to the email page.
func RequireSession(state sessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")

			switch guard.Evaluate(state.IsLoading(), state.IsAuthenticated()) {
			case guard.Loading:
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(loadingPage))
			case guard.Unauthenticated:
				http.Redirect(w, r, EmailPagePath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RedirectIfAuthenticated keeps signed-in users off the sign-in pages. Any
// other state falls through to the page.
func RedirectIfAuthenticated(state sessionState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if guard.Evaluate(state.IsLoading(), state.IsAuthenticated()) == guard.Authenticated {
				http.Redirect(w, r, DashboardPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithEmail builds a page path carrying the email as a query parameter.
func WithEmail(path string, email string) string {
	if email == "" {
		return path
	}
	return path + "?" + url.Values{"email": {email}}.Encode()
}
