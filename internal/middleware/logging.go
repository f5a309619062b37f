package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxLoggedBody   = 4096
)

// jsonFailure is the error part of the local JSON envelope.
type jsonFailure struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Logging writes one line per request. Email addresses carried in redirect
// targets are masked.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		lw := &loggedWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)

		attrs := requestAttrs(r, lw, requestID, time.Since(started))
		switch {
		case lw.status >= 500:
			slog.Error("request", attrs...)
		case lw.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

func requestAttrs(r *http.Request, lw *loggedWriter, requestID string, elapsed time.Duration) []any {
	attrs := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", lw.status,
		"duration_ms", elapsed.Milliseconds(),
		"client_ip", r.RemoteAddr,
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		attrs = append(attrs, "route", rctx.RoutePattern())
	}
	if location := lw.Header().Get("Location"); location != "" {
		attrs = append(attrs, "location", redactLocation(location))
	}

	if lw.status >= 400 && lw.body.Len() > 0 {
		var failure jsonFailure
		if err := json.Unmarshal(lw.body.Bytes(), &failure); err == nil && failure.Error != nil {
			attrs = append(attrs, "error_code", failure.Error.Code, "error_message", failure.Error.Message)
		}
	}

	return attrs
}

// redactLocation masks the email query parameter of the login and register
// redirects.
func redactLocation(location string) string {
	parsed, err := url.Parse(location)
	if err != nil {
		return location
	}

	query := parsed.Query()
	email := query.Get("email")
	if email == "" {
		return location
	}

	query.Set("email", maskEmail(email))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	return string([]rune(local)[:1]) + "***@" + domain
}

type loggedWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (lw *loggedWriter) WriteHeader(statusCode int) {
	if lw.wroteHeader {
		return
	}
	lw.status = statusCode
	lw.wroteHeader = true
	lw.ResponseWriter.WriteHeader(statusCode)
}

func (lw *loggedWriter) Write(b []byte) (int, error) {
	if lw.status >= 400 && lw.body.Len() < maxLoggedBody {
		lw.body.Write(b)
	}
	return lw.ResponseWriter.Write(b)
}

func (lw *loggedWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

// Hijack keeps the websocket upgrade working behind the logger.
func (lw *loggedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := lw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	lw.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}
