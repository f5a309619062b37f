package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-auth-dashboard/internal/middleware"
	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/pkg/apierror"
)

type contextKey string

const userIDContextKey contextKey = "mockapi_user_id"

// errorBody is the failure shape of the remote API. Message is a string or a
// list of strings.
type errorBody struct {
	Message    any    `json:"message"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

type Handler struct {
	service *Service
}

// NewRouter mounts the API under /api, matching the default API base URL.
func NewRouter(service *Service) http.Handler {
	h := &Handler{service: service}

	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/check-email", h.CheckEmail)
		api.Post("/auth/login", h.Login)
		api.Post("/auth/register", h.Register)
		api.Post("/auth/refresh", h.Refresh)

		api.Group(func(authed chi.Router) {
			authed.Use(h.requireAuth)
			authed.Post("/auth/logout", h.Logout)
			authed.Get("/user/profile", h.Profile)
			authed.Put("/user/update", h.UpdateProfile)
		})

		api.Post("/dev/expire-access-tokens", func(w http.ResponseWriter, _ *http.Request) {
			service.ExpireAccessTokens()
			writeJSON(w, http.StatusOK, map[string]any{"message": "access tokens expired"})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, remoteError(http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path))
	})

	return r
}

func (h *Handler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req model.CheckEmailRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.CheckEmail(req.Email)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.service.Register(req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeFailure(w, badRequest("refreshToken should not be empty"))
		return
	}

	resp, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(userIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(userIDFromContext(r.Context()))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.service.UpdateProfile(userIDFromContext(r.Context()), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			writeFailure(w, remoteError(http.StatusUnauthorized, "Unauthorized"))
			return
		}

		userID, err := h.service.Authenticate(strings.TrimSpace(header[7:]))
		if err != nil {
			writeFailure(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(out); err != nil {
		writeFailure(w, remoteError(http.StatusBadRequest, "Invalid JSON body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFailure(w http.ResponseWriter, err error) {
	var validation *validationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Message:    validation.messages,
			StatusCode: http.StatusBadRequest,
			Error:      http.StatusText(http.StatusBadRequest),
		})
		return
	}

	if apiErr, ok := apierror.As(err); ok {
		writeJSON(w, apiErr.StatusCode, errorBody{
			Message:    apiErr.Message,
			StatusCode: apiErr.StatusCode,
			Error:      apiErr.Code,
		})
		return
	}

	slog.Error("mock api failure", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
		Error:      http.StatusText(http.StatusInternalServerError),
	})
}
