package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/pkg/apierror"
)

const (
	msgNetworkError      = "Connection error. Please try again."
	msgInvalidLogin      = "Invalid email or password."
	msgEmailAlreadyInUse = "This email is already in use."
	msgUnexpected        = "Something went wrong. Please try again."
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	if apiErr, ok := apierror.As(err); ok {
		status = pageStatus(apiErr)
		body.Code = apiErr.Code
		body.Message = apiErr.Message
	} else if errors.Is(err, model.ErrNotLoggedIn) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else {
		slog.Error("unhandled error in writeError", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// pageStatus picks the status a local page answers with when the remote call
// behind it failed. Remote client errors are passed on; anything else is a
// gateway failure from this server's point of view.
func pageStatus(apiErr *apierror.APIError) int {
	switch {
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	case apiErr.Kind() == apierror.KindNetwork && apiErr.Code == "TIMEOUT":
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// userMessage turns a remote failure into the sentence shown on a form.
func userMessage(err error, fallback string) (string, int) {
	apiErr, ok := apierror.As(err)
	if !ok {
		slog.Error("unexpected auth failure", "error", err)
		return msgUnexpected, http.StatusInternalServerError
	}
	if apiErr.Kind() == apierror.KindNetwork {
		return msgNetworkError, pageStatus(apiErr)
	}
	if apiErr.Message == "" {
		return fallback, pageStatus(apiErr)
	}
	return apiErr.Message, pageStatus(apiErr)
}
