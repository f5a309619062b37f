package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/pkg/apierror"
)

func TestCheckEmail(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.api.on(http.MethodPost, "/auth/check-email", func(w http.ResponseWriter, r *http.Request) {
		var req model.CheckEmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		respond(w, http.StatusOK, model.EmailCheckResponse{Exists: req.Email == "ada@example.com", Email: req.Email})
	})

	resp, err := c.auth.CheckEmail(context.Background(), "  ada@example.com ")
	require.NoError(t, err)
	assert.True(t, resp.Exists)
	assert.Equal(t, "ada@example.com", resp.Email)

	resp, err = c.auth.CheckEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, resp.Exists)
}

func TestCheckEmailRenewsExpiredToken(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.signIn()
	c.api.on(http.MethodPost, "/auth/check-email", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t2" {
			remoteError(http.StatusUnauthorized, "Token expired")(w, r)
			return
		}
		respond(w, http.StatusOK, model.EmailCheckResponse{Exists: true, Email: "ada@example.com"})
	})
	c.api.on(http.MethodPost, "/auth/refresh", reply(http.StatusOK, model.RefreshResponse{Token: "t2"}))

	resp, err := c.auth.CheckEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, resp.Exists)
	assert.Equal(t, 1, c.api.count(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, []string{"Bearer t1", "Bearer t2"}, c.api.authHeaders(http.MethodPost, "/auth/check-email"))
}

func TestLoginStoresSession(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.api.on(http.MethodPost, "/auth/login", reply(http.StatusOK, authPayload()))

	resp, err := c.auth.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)

	token, ok := c.session.Token()
	require.True(t, ok)
	assert.Equal(t, "t1", token)

	refresh, ok := c.session.RefreshToken()
	require.True(t, ok)
	assert.Equal(t, "r1", refresh)

	user, ok := c.session.User()
	require.True(t, ok)
	assert.Equal(t, testUser(), *user)
	assert.True(t, c.auth.IsAuthenticated())
}

func TestLoginWrongPasswordKeepsStoreAndSkipsRefresh(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.signIn()
	c.api.on(http.MethodPost, "/auth/login", remoteError(http.StatusUnauthorized, "Invalid credentials"))
	c.api.on(http.MethodPost, "/auth/refresh", reply(http.StatusOK, model.RefreshResponse{Token: "t2"}))

	_, err := c.auth.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "nope"})
	require.Error(t, err)

	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	assert.Zero(t, c.api.count(http.MethodPost, "/auth/refresh"))
	token, ok := c.session.Token()
	require.True(t, ok)
	assert.Equal(t, "t1", token)
}

func TestLoginRejectsResponseWithoutTokens(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.api.on(http.MethodPost, "/auth/login", reply(http.StatusOK, map[string]any{"user": testUser()}))

	_, err := c.auth.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "pw"})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_RESPONSE", apiErr.Code)
	requireEmptySession(t, c.session)
}

func TestRegisterStoresSession(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.api.on(http.MethodPost, "/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req model.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada", req.FirstName)
		respond(w, http.StatusCreated, authPayload())
	})

	_, err := c.auth.Register(context.Background(), model.RegisterRequest{
		Email:     "ada@example.com",
		Password:  "password123",
		FirstName: " Ada ",
	})
	require.NoError(t, err)
	assert.True(t, c.auth.IsAuthenticated())
}

func TestRegisterConflictLeavesStoreEmpty(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	c.api.on(http.MethodPost, "/auth/register", remoteError(http.StatusConflict, "Email already registered"))

	_, err := c.auth.Register(context.Background(), model.RegisterRequest{Email: "ada@example.com", Password: "password123"})
	apiErr, ok := apierror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	requireEmptySession(t, c.session)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears session after remote logout", func(t *testing.T) {
		t.Parallel()

		c := newTestClients(t)
		c.signIn()
		c.api.on(http.MethodPost, "/auth/logout", reply(http.StatusOK, map[string]any{"message": "ok"}))

		require.NoError(t, c.auth.Logout(context.Background()))
		assert.Equal(t, []string{"Bearer t1"}, c.api.authHeaders(http.MethodPost, "/auth/logout"))
		requireEmptySession(t, c.session)
	})

	t.Run("clears session when server is unreachable", func(t *testing.T) {
		t.Parallel()

		c := newTestClients(t)
		c.signIn()
		c.server.Close()

		err := c.auth.Logout(context.Background())
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, 0, apiErr.StatusCode)
		assert.Equal(t, apierror.KindNetwork, apiErr.Kind())
		requireEmptySession(t, c.session)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("stores new access token", func(t *testing.T) {
		t.Parallel()

		c := newTestClients(t)
		c.signIn()
		c.api.on(http.MethodPost, "/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			var req model.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "r1", req.RefreshToken)
			respond(w, http.StatusOK, model.RefreshResponse{Token: "t2"})
		})

		token, err := c.auth.RefreshToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "t2", token)

		stored, _ := c.session.Token()
		assert.Equal(t, "t2", stored)
		refresh, _ := c.session.RefreshToken()
		assert.Equal(t, "r1", refresh)
	})

	t.Run("no refresh token clears session", func(t *testing.T) {
		t.Parallel()

		c := newTestClients(t)
		c.session.SetToken("t1")

		_, err := c.auth.RefreshToken(context.Background())
		require.True(t, errors.Is(err, model.ErrNoRefreshToken))
		assert.Zero(t, c.api.count(http.MethodPost, "/auth/refresh"))
		requireEmptySession(t, c.session)
	})

	t.Run("rejected refresh clears session once", func(t *testing.T) {
		t.Parallel()

		c := newTestClients(t)
		c.signIn()
		c.api.on(http.MethodPost, "/auth/refresh", remoteError(http.StatusUnauthorized, "Invalid refresh token"))

		_, err := c.auth.RefreshToken(context.Background())
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, 1, c.api.count(http.MethodPost, "/auth/refresh"))
		requireEmptySession(t, c.session)
	})
}

func TestSessionAccessors(t *testing.T) {
	t.Parallel()

	c := newTestClients(t)
	assert.False(t, c.auth.IsAuthenticated())

	c.signIn()
	token, ok := c.auth.Token()
	require.True(t, ok)
	assert.Equal(t, "t1", token)

	user, ok := c.auth.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)

	c.auth.ClearSession()
	requireEmptySession(t, c.session)
}
