package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-auth-dashboard/internal/config"
	"go-auth-dashboard/internal/handler"
	"go-auth-dashboard/internal/metrics"
	"go-auth-dashboard/internal/middleware"
	"go-auth-dashboard/internal/websocket"
)

// SessionState is read by the route guards on every protected request.
type SessionState interface {
	IsLoading() bool
	IsAuthenticated() bool
}

type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Session   *handler.SessionHandler
}

func New(cfg *config.Config, state SessionState, h Handlers, hub *websocket.Hub, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	requireSession := middleware.RequireSession(state)
	guestOnly := middleware.RedirectIfAuthenticated(state)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(m.Instrument)

	r.Get("/health", h.Session.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/api/session", h.Session.Current)

	// The websocket route must stay outside the timeout group.
	r.With(requireSession).Get("/ws", hub.Handler(cfg.CORSOrigins))

	r.Group(func(pages chi.Router) {
		pages.Use(middleware.Timeout(cfg.HandlerTimeout))

		pages.Get("/", redirectTo(middleware.EmailPagePath))

		pages.Route("/auth", func(auth chi.Router) {
			auth.Group(func(guest chi.Router) {
				guest.Use(guestOnly)
				guest.Get("/email", h.Auth.EmailPage)
				guest.Post("/email", h.Auth.SubmitEmail)
				guest.Get("/login", h.Auth.LoginPage)
				guest.Post("/login", h.Auth.SubmitLogin)
				guest.Get("/register", h.Auth.RegisterPage)
				guest.Post("/register", h.Auth.SubmitRegister)
			})
			auth.Post("/logout", h.Auth.Logout)
		})

		pages.Route("/dashboard", func(dash chi.Router) {
			dash.Use(requireSession)
			dash.Get("/", h.Dashboard.Dashboard)
			dash.Get("/avatar.png", h.Dashboard.Avatar)
			dash.Post("/profile", h.Dashboard.UpdateProfile)
			dash.Post("/refresh", h.Dashboard.RefreshProfile)
		})
	})

	r.NotFound(redirectTo(middleware.EmailPagePath))

	return r
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}
