package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"go-auth-dashboard/pkg/apierror"
)

const maxErrorBody = 1 << 20

// remoteError is the failure body the auth API sends. message is either a
// string or a list of validation messages.
type remoteError struct {
	Message    json.RawMessage `json:"message"`
	StatusCode int             `json:"statusCode"`
	Error      string          `json:"error"`
}

func (r remoteError) text() string {
	var single string
	if err := json.Unmarshal(r.Message, &single); err == nil {
		return strings.TrimSpace(single)
	}

	var many []string
	if err := json.Unmarshal(r.Message, &many); err == nil {
		return strings.TrimSpace(strings.Join(many, "; "))
	}

	return ""
}

// fromResponse normalizes a non-2xx response. The body wins when it carries
// a message; otherwise the HTTP status text is used.
func fromResponse(resp *http.Response) *apierror.APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body remoteError
	if err := json.Unmarshal(raw, &body); err == nil {
		if message := body.text(); message != "" {
			status := body.StatusCode
			if status == 0 {
				status = resp.StatusCode
			}
			return apierror.New(body.Error, message, status)
		}
	}

	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = "unexpected response from server"
	}
	return apierror.New("", message, resp.StatusCode)
}

// fromTransportError normalizes a failure where no response arrived.
func fromTransportError(err error) *apierror.APIError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return apierror.Wrap(err, "TIMEOUT", "request timed out", 0)
	case errors.Is(err, context.Canceled):
		return apierror.Wrap(err, "CANCELED", "request canceled", 0)
	default:
		return apierror.Wrap(err, "NETWORK_ERROR", "network connection error", 0)
	}
}
