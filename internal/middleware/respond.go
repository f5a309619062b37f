package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go-auth-dashboard/internal/model"
)

// writeFailure answers JSON clients with the API envelope and everyone else
// with a short plain-text body.
func writeFailure(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: code, Message: message},
		})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message + "\n"))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
