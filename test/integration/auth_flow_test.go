//go:build integration

package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailGateRoutesToLoginOrRegister(t *testing.T) {
	s := newStack(t)
	s.seed(t)
	browser := newBrowser(t)

	p := postForm(t, browser, s.web.URL+"/auth/email", url.Values{"email": {"Ada@Example.com"}})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/auth/login?email=ada%40example.com", p.location)

	p = postForm(t, browser, s.web.URL+"/auth/email", url.Values{"email": {"new@example.com"}})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/auth/register?email=new%40example.com", p.location)

	p = postForm(t, browser, s.web.URL+"/auth/email", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Please enter a valid email.")
}

func TestLoginDashboardLogout(t *testing.T) {
	s := newStack(t)
	s.seed(t)
	browser := newBrowser(t)

	p := get(t, browser, s.web.URL+"/dashboard")
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/auth/email", p.location)

	p = postForm(t, browser, s.web.URL+"/auth/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"wrong-password"},
	})
	assert.Equal(t, http.StatusUnauthorized, p.status)
	assert.Contains(t, p.body, "Invalid credentials")
	assert.Zero(t, s.api.RefreshCalls())

	p = postForm(t, browser, s.web.URL+"/auth/login", url.Values{
		"email":    {"ada@example.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/dashboard", p.location)

	p = get(t, browser, s.web.URL+"/dashboard")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Ada Lovelace")

	p = get(t, browser, s.web.URL+"/auth/email")
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/dashboard", p.location)

	p = get(t, browser, s.web.URL+"/dashboard/avatar.png")
	require.Equal(t, http.StatusOK, p.status)

	p = postForm(t, browser, s.web.URL+"/auth/logout", url.Values{})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/auth/email", p.location)

	view := currentSession(t, browser, s.web.URL)
	assert.Equal(t, "unauthenticated", view.State)
	assert.Nil(t, view.User)
}

func TestRegisterCreatesAccount(t *testing.T) {
	s := newStack(t)
	browser := newBrowser(t)

	p := postForm(t, browser, s.web.URL+"/auth/register", url.Values{
		"email":           {"grace@example.com"},
		"firstName":       {"Grace"},
		"lastName":        {"Hopper"},
		"password":        {"password123"},
		"confirmPassword": {"password124"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Passwords do not match.")

	p = postForm(t, browser, s.web.URL+"/auth/register", url.Values{
		"email":           {"grace@example.com"},
		"firstName":       {"Grace"},
		"lastName":        {"Hopper"},
		"password":        {"password123"},
		"confirmPassword": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/dashboard", p.location)

	view := currentSession(t, browser, s.web.URL)
	assert.Equal(t, "authenticated", view.State)
	require.NotNil(t, view.User)
	assert.Equal(t, "grace@example.com", view.User.Email)

	exists, err := s.api.CheckEmail("grace@example.com")
	require.NoError(t, err)
	assert.True(t, exists.Exists)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newStack(t)
	s.seed(t)
	browser := newBrowser(t)

	p := postForm(t, browser, s.web.URL+"/auth/register", url.Values{
		"email":           {"ada@example.com"},
		"password":        {"password123"},
		"confirmPassword": {"password123"},
	})
	assert.Equal(t, http.StatusConflict, p.status)
	assert.Contains(t, p.body, "This email is already in use.")
}
