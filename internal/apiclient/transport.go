package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"go-auth-dashboard/internal/metrics"
	"go-auth-dashboard/internal/model"
)

const (
	refreshPath    = "/auth/refresh"
	refreshTimeout = 10 * time.Second
)

// TokenStore is the part of the session the transport reads and evicts.
type TokenStore interface {
	Token() (string, bool)
	RefreshToken() (string, bool)
	SetToken(token string)
	Clear()
}

type refreshExemptKey struct{}

// WithoutRefresh marks a request whose 401 must reach the caller untouched,
// e.g. a login attempt with a wrong password.
func WithoutRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshExemptKey{}, true)
}

func refreshExempt(ctx context.Context) bool {
	v, _ := ctx.Value(refreshExemptKey{}).(bool)
	return v
}

// AuthTransport attaches the stored bearer token to every request and
// recovers from one expired access token per request: on a 401 it refreshes
// the token and replays the request exactly once. When no refresh is
// possible the session is cleared and expiry listeners are notified.
type AuthTransport struct {
	base    http.RoundTripper
	baseURL string
	tokens  TokenStore
	metrics *metrics.Metrics
	log     *slog.Logger

	refreshGroup singleflight.Group

	mu        sync.RWMutex
	listeners []func()
}

var _ http.RoundTripper = (*AuthTransport)(nil)

type TransportOption func(*AuthTransport)

func WithBaseTransport(base http.RoundTripper) TransportOption {
	return func(t *AuthTransport) {
		if base != nil {
			t.base = base
		}
	}
}

func WithMetrics(m *metrics.Metrics) TransportOption {
	return func(t *AuthTransport) {
		t.metrics = m
	}
}

func NewAuthTransport(baseURL string, tokens TokenStore, opts ...TransportOption) *AuthTransport {
	t := &AuthTransport{
		base:    http.DefaultTransport,
		baseURL: baseURL,
		tokens:  tokens,
		log:     slog.Default().With("component", "auth_transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnSessionExpired registers fn to run after the session was cleared because
// the access token could not be renewed.
func (t *AuthTransport) OnSessionExpired(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	outbound := cloneRequest(req, body)
	if token, ok := t.tokens.Token(); ok {
		outbound.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.send(outbound)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || refreshExempt(req.Context()) {
		return resp, nil
	}

	token, err := t.refresh(req.Context())
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			drain(resp)
			return nil, ctxErr
		}
		return resp, nil
	}

	drain(resp)

	// The pending request is replayed once; whatever comes back is final.
	retry := cloneRequest(req, body)
	retry.Header.Set("Authorization", "Bearer "+token)
	return t.send(retry)
}

func (t *AuthTransport) send(req *http.Request) (*http.Response, error) {
	started := time.Now()
	resp, err := t.base.RoundTrip(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	t.metrics.ObserveOutbound(req.Method, status, time.Since(started))
	return resp, err
}

// refresh trades the stored refresh token for a new access token. Concurrent
// callers share a single remote call, which runs detached from any one
// caller's cancellation. A caller that gives up gets its own context error
// and leaves the session alone; a refresh that fails clears the session once.
func (t *AuthTransport) refresh(ctx context.Context) (string, error) {
	results := t.refreshGroup.DoChan("refresh", func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		token, err := t.renew(refreshCtx)
		if err != nil {
			t.log.Warn("access token could not be renewed; clearing session", "error", err)
			t.expire()
			return "", err
		}
		return token, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (t *AuthTransport) renew(ctx context.Context) (string, error) {
	refreshToken, ok := t.tokens.RefreshToken()
	if !ok {
		t.metrics.RefreshAttempt("missing")
		return "", model.ErrNoRefreshToken
	}

	token, err := t.requestToken(ctx, refreshToken)
	if err != nil {
		t.metrics.RefreshAttempt("failure")
		return "", err
	}

	t.tokens.SetToken(token)
	t.metrics.RefreshAttempt("success")
	t.log.Debug("access token refreshed")
	return token, nil
}

func (t *AuthTransport) requestToken(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(model.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var out model.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("refresh response carried no token")
	}
	return out.Token, nil
}

func (t *AuthTransport) expire() {
	t.tokens.Clear()
	t.metrics.SessionEvicted()

	t.mu.RLock()
	listeners := append([]func(){}, t.listeners...)
	t.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// bufferBody reads the request body once so the request can be replayed.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	return data, nil
}

func cloneRequest(req *http.Request, body []byte) *http.Request {
	out := req.Clone(req.Context())
	if body == nil {
		out.Body = http.NoBody
		out.GetBody = nil
		out.ContentLength = 0
		return out
	}

	out.Body = io.NopCloser(bytes.NewReader(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	out.ContentLength = int64(len(body))
	return out
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
