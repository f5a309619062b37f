//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-dashboard/internal/app"
	"go-auth-dashboard/internal/config"
	"go-auth-dashboard/internal/mockapi"
)

type stack struct {
	api *mockapi.Service
	app *app.App
	web *httptest.Server
}

// newStack starts the mock auth API and the web front pointed at it, with an
// in-memory session store.
func newStack(t *testing.T) *stack {
	t.Helper()

	svc := mockapi.NewService(mockapi.Options{JWTSecret: "test-secret", BcryptCost: bcrypt.MinCost})
	apiServer := httptest.NewServer(mockapi.NewRouter(svc))
	t.Cleanup(apiServer.Close)

	cfg := &config.Config{
		APIBaseURL:         apiServer.URL + "/api",
		RequestTimeout:     5 * time.Second,
		ServerPort:         "0",
		ServerReadTimeout:  15 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		ServerIdleTimeout:  120 * time.Second,
		HandlerTimeout:     10 * time.Second,
		SessionDriver:      config.SessionDriverMemory,
		CORSOrigins:        []string{"*"},
		RateLimitRPM:       1000,
		AuthRateLimitRPM:   1000,
		LogLevel:           "error",
		LogFormat:          "text",
	}

	application, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	web := httptest.NewServer(application.Handler())
	t.Cleanup(web.Close)

	return &stack{api: svc, app: application, web: web}
}

func (s *stack) seed(t *testing.T) {
	t.Helper()

	_, err := s.api.Seed("ada@example.com", "password123", "Ada", "Lovelace")
	require.NoError(t, err)
}

// browser does not follow redirects so each hop can be asserted.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func get(t *testing.T, client *http.Client, rawURL string) page {
	t.Helper()

	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	return readPage(t, resp)
}

func postForm(t *testing.T, client *http.Client, rawURL string, form url.Values) page {
	t.Helper()

	resp, err := client.PostForm(rawURL, form)
	require.NoError(t, err)
	return readPage(t, resp)
}

func readPage(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
	}
}

type sessionView struct {
	State         string `json:"state"`
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	User          *struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
	} `json:"user"`
}

func currentSession(t *testing.T, client *http.Client, baseURL string) sessionView {
	t.Helper()

	p := get(t, client, baseURL+"/api/session")
	require.Equal(t, http.StatusOK, p.status)

	var envelope struct {
		Success bool        `json:"success"`
		Data    sessionView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(strings.NewReader(p.body)).Decode(&envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}
