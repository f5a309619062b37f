package handler

import (
	"net/http"
	"strconv"

	"go-auth-dashboard/internal/middleware"
	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/service"
	"go-auth-dashboard/internal/util"
)

// DashboardHandler serves the protected pages. Routes are expected to sit
// behind middleware.RequireSession.
type DashboardHandler struct {
	flow    SessionFlow
	pages   *Pages
	avatars *service.AvatarService
}

func NewDashboardHandler(flow SessionFlow, pages *Pages, avatars *service.AvatarService) *DashboardHandler {
	return &DashboardHandler{flow: flow, pages: pages, avatars: avatars}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state := h.flow.State()
	if state.User == nil {
		http.Redirect(w, r, middleware.EmailPagePath, http.StatusSeeOther)
		return
	}

	data := PageData{Title: "Dashboard", User: state.User}
	if r.URL.Query().Get("updated") == "1" {
		data.Notice = "Profile saved."
	}
	h.pages.Render(w, http.StatusOK, "dashboard.html", data)
}

func (h *DashboardHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	state := h.flow.State()
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, http.StatusBadRequest, "dashboard.html", PageData{Title: "Dashboard", User: state.User, Error: "Invalid form submission."})
		return
	}

	req := model.UpdateProfileRequest{
		FirstName: util.SanitizeName(r.PostForm.Get("firstName")),
		LastName:  util.SanitizeName(r.PostForm.Get("lastName")),
	}

	if _, err := h.flow.UpdateProfile(r.Context(), req); err != nil {
		h.renderFailure(w, r, err)
		return
	}

	http.Redirect(w, r, middleware.DashboardPath+"?updated=1", http.StatusSeeOther)
}

func (h *DashboardHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.flow.RefreshProfile(r.Context()); err != nil {
		h.renderFailure(w, r, err)
		return
	}
	http.Redirect(w, r, middleware.DashboardPath, http.StatusSeeOther)
}

// renderFailure sends the user back to the email page when the failure ended
// the session, and shows the message on the dashboard otherwise.
func (h *DashboardHandler) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	state := h.flow.State()
	if state.User == nil {
		http.Redirect(w, r, middleware.EmailPagePath, http.StatusSeeOther)
		return
	}

	message, status := userMessage(err, msgUnexpected)
	h.pages.Render(w, status, "dashboard.html", PageData{Title: "Dashboard", User: state.User, Error: message})
}

func (h *DashboardHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	state := h.flow.State()
	if state.User == nil {
		writeError(w, model.ErrNotLoggedIn)
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	encoded, err := h.avatars.Render(*state.User, size)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("Content-Length", strconv.Itoa(len(encoded)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}
