package handler

import (
	"net/http"

	"go-auth-dashboard/internal/guard"
	"go-auth-dashboard/internal/model"
)

type SessionHandler struct {
	flow   SessionFlow
	driver string
}

func NewSessionHandler(flow SessionFlow, driver string) *SessionHandler {
	return &SessionHandler{flow: flow, driver: driver}
}

type sessionView struct {
	State         string      `json:"state"`
	Authenticated bool        `json:"authenticated"`
	Loading       bool        `json:"loading"`
	User          *model.User `json:"user,omitempty"`
}

// Current reports the provider state as JSON for scripts on the pages.
func (h *SessionHandler) Current(w http.ResponseWriter, _ *http.Request) {
	state := h.flow.State()
	writeSuccess(w, http.StatusOK, sessionView{
		State:         guard.Evaluate(state.Loading, state.Authenticated).String(),
		Authenticated: state.Authenticated,
		Loading:       state.Loading,
		User:          state.User,
	})
}

func (h *SessionHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"session_driver": h.driver,
	})
}
