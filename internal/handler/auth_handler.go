package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-auth-dashboard/internal/middleware"
	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/service"
	"go-auth-dashboard/internal/util"
)

const (
	loginPagePath    = "/auth/login"
	registerPagePath = "/auth/register"
)

// SessionFlow is what the page handlers need from the session provider.
type SessionFlow interface {
	State() service.SessionState
	CheckEmail(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, req model.LoginRequest) error
	Register(ctx context.Context, req model.RegisterRequest) error
	Logout(ctx context.Context) error
	RefreshProfile(ctx context.Context) (model.User, error)
	UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (model.User, error)
}

// AuthHandler serves the email, login and register pages and their forms.
type AuthHandler struct {
	flow  SessionFlow
	pages *Pages
}

func NewAuthHandler(flow SessionFlow, pages *Pages) *AuthHandler {
	return &AuthHandler{flow: flow, pages: pages}
}

func (h *AuthHandler) EmailPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, http.StatusOK, "email.html", PageData{
		Title: "Welcome",
		Email: strings.TrimSpace(r.URL.Query().Get("email")),
	})
}

func (h *AuthHandler) SubmitEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, http.StatusBadRequest, "email.html", PageData{Title: "Welcome", Error: "Invalid form submission."})
		return
	}

	email := util.NormalizeEmail(r.PostForm.Get("email"))
	data := PageData{Title: "Welcome", Email: email}

	if errs := util.ValidateEmail(email); !errs.Empty() {
		data.Errors = errs
		h.pages.Render(w, http.StatusUnprocessableEntity, "email.html", data)
		return
	}

	exists, err := h.flow.CheckEmail(r.Context(), email)
	if err != nil {
		message, status := userMessage(err, msgUnexpected)
		data.Error = message
		h.pages.Render(w, status, "email.html", data)
		return
	}

	target := registerPagePath
	if exists {
		target = loginPagePath
	}
	http.Redirect(w, r, middleware.WithEmail(target, email), http.StatusSeeOther)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, http.StatusOK, "login.html", PageData{
		Title: "Sign in",
		Email: strings.TrimSpace(r.URL.Query().Get("email")),
	})
}

func (h *AuthHandler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, http.StatusBadRequest, "login.html", PageData{Title: "Sign in", Error: "Invalid form submission."})
		return
	}

	req := model.LoginRequest{
		Email:    util.NormalizeEmail(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	data := PageData{Title: "Sign in", Email: req.Email}

	if errs := util.ValidateLogin(req); !errs.Empty() {
		data.Errors = errs
		h.pages.Render(w, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	if err := h.flow.Login(r.Context(), req); err != nil {
		message, status := userMessage(err, msgInvalidLogin)
		data.Error = message
		h.pages.Render(w, status, "login.html", data)
		return
	}

	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, http.StatusOK, "register.html", PageData{
		Title: "Create account",
		Email: strings.TrimSpace(r.URL.Query().Get("email")),
	})
}

func (h *AuthHandler) SubmitRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, http.StatusBadRequest, "register.html", PageData{Title: "Create account", Error: "Invalid form submission."})
		return
	}

	form := model.RegisterForm{
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
		FirstName:       r.PostForm.Get("firstName"),
		LastName:        r.PostForm.Get("lastName"),
	}
	req := util.RegisterRequest(form)
	data := PageData{Title: "Create account", Email: req.Email, FirstName: req.FirstName, LastName: req.LastName}

	if errs := util.ValidateRegister(form); !errs.Empty() {
		data.Errors = errs
		h.pages.Render(w, http.StatusUnprocessableEntity, "register.html", data)
		return
	}

	if err := h.flow.Register(r.Context(), req); err != nil {
		message, status := userMessage(err, msgUnexpected)
		if status == http.StatusConflict {
			message = msgEmailAlreadyInUse
		}
		data.Error = message
		h.pages.Render(w, status, "register.html", data)
		return
	}

	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}

// Logout always lands on the email page; the local session is gone even if
// the remote call failed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Logout(r.Context()); err != nil {
		slog.Warn("logout finished with remote error", "error", err)
	}
	http.Redirect(w, r, middleware.EmailPagePath, http.StatusSeeOther)
}
