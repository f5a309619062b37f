package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a normalized error by where the failure happened.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindServer     Kind = "server"
)

// APIError is the uniform error shape surfaced to pages and commands. It
// mirrors the body the remote API sends on failure.
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"error,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
	}

	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Kind derives the taxonomy bucket from the status code.
func (e *APIError) Kind() Kind {
	switch {
	case e == nil:
		return ""
	case e.StatusCode == 0:
		return KindNetwork
	case e.StatusCode == http.StatusUnauthorized:
		return KindAuth
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return KindValidation
	default:
		return KindServer
	}
}

func New(code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, StatusCode: status}
}

// Wrap builds an APIError that keeps cause reachable through errors.Is/As.
func Wrap(cause error, code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, StatusCode: status, cause: cause}
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
