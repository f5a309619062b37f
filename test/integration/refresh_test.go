//go:build integration

package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signIn(t *testing.T, s *stack, browser *http.Client) {
	t.Helper()

	p := postForm(t, browser, s.web.URL+"/auth/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, p.status)
}

func TestExpiredAccessTokenIsRefreshedTransparently(t *testing.T) {
	s := newStack(t)
	s.seed(t)
	browser := newBrowser(t)
	signIn(t, s, browser)

	s.api.ExpireAccessTokens()

	p := postForm(t, browser, s.web.URL+"/dashboard/profile", url.Values{
		"firstName": {"Augusta"},
		"lastName":  {"Lovelace"},
	})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/dashboard?updated=1", p.location)
	assert.EqualValues(t, 1, s.api.RefreshCalls())

	p = get(t, browser, s.web.URL+"/dashboard?updated=1")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Augusta Lovelace")

	// The refreshed token keeps working without another refresh.
	p = postForm(t, browser, s.web.URL+"/dashboard/refresh", url.Values{})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.EqualValues(t, 1, s.api.RefreshCalls())
}

func TestRevokedRefreshTokenEndsSession(t *testing.T) {
	s := newStack(t)
	s.seed(t)
	browser := newBrowser(t)
	signIn(t, s, browser)

	s.api.ExpireAccessTokens()
	s.api.RevokeRefreshTokens()

	p := postForm(t, browser, s.web.URL+"/dashboard/refresh", url.Values{})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/auth/email", p.location)

	view := currentSession(t, browser, s.web.URL)
	assert.Equal(t, "unauthenticated", view.State)
	assert.False(t, s.app.Provider().IsAuthenticated())

	p = get(t, browser, s.web.URL+"/dashboard")
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/auth/email", p.location)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newStack(t)
	browser := newBrowser(t)

	p := get(t, browser, s.web.URL+"/health")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `"session_driver":"memory"`)

	p = get(t, browser, s.web.URL+"/metrics")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "http_requests_total")
}
