package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-auth-dashboard/internal/apiclient"
	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/session"
	"go-auth-dashboard/pkg/apierror"
)

const (
	pathCheckEmail = "/auth/check-email"
	pathLogin      = "/auth/login"
	pathRegister   = "/auth/register"
	pathRefresh    = "/auth/refresh"
	pathLogout     = "/auth/logout"
)

// AuthClient performs the remote auth operations and keeps the session store
// in step with their results.
type AuthClient struct {
	api     *apiclient.Client
	session *session.Session
}

func NewAuthClient(api *apiclient.Client, sess *session.Session) *AuthClient {
	return &AuthClient{api: api, session: sess}
}

func (c *AuthClient) CheckEmail(ctx context.Context, email string) (model.EmailCheckResponse, error) {
	var out model.EmailCheckResponse
	err := c.api.Post(ctx, pathCheckEmail, model.CheckEmailRequest{Email: strings.TrimSpace(email)}, &out)
	if err != nil {
		return model.EmailCheckResponse{}, err
	}
	return out, nil
}

// Login stores the returned credentials and user. On failure the store is
// left as it was.
func (c *AuthClient) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	return c.authenticate(ctx, pathLogin, req)
}

func (c *AuthClient) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	return c.authenticate(ctx, pathRegister, req)
}

func (c *AuthClient) authenticate(ctx context.Context, path string, payload any) (model.AuthResponse, error) {
	var out model.AuthResponse
	if err := c.api.Post(apiclient.WithoutRefresh(ctx), path, payload, &out); err != nil {
		return model.AuthResponse{}, err
	}

	if out.Token == "" || out.RefreshToken == "" {
		return model.AuthResponse{}, apierror.New("INVALID_RESPONSE", "authentication response is missing credentials", http.StatusBadGateway)
	}

	c.session.Save(out)
	return out, nil
}

// Logout always clears the local session. A failed remote call is still
// returned once the local cleanup is done.
func (c *AuthClient) Logout(ctx context.Context) error {
	err := c.api.Post(ctx, pathLogout, nil, nil)
	c.session.Clear()

	if err != nil {
		slog.Warn("remote logout failed; local session cleared", "error", err)
		return err
	}
	return nil
}

// RefreshToken renews the access token with the stored refresh token. Any
// failure clears the session.
func (c *AuthClient) RefreshToken(ctx context.Context) (string, error) {
	refreshToken, ok := c.session.RefreshToken()
	if !ok {
		c.session.Clear()
		return "", apierror.Wrap(model.ErrNoRefreshToken, "NO_REFRESH_TOKEN", "no refresh token available", http.StatusUnauthorized)
	}

	var out model.RefreshResponse
	err := c.api.Post(apiclient.WithoutRefresh(ctx), pathRefresh, model.RefreshRequest{RefreshToken: refreshToken}, &out)
	if err == nil && out.Token == "" {
		err = apierror.New("INVALID_RESPONSE", "refresh response is missing a token", http.StatusBadGateway)
	}
	if err != nil {
		c.session.Clear()
		return "", err
	}

	c.session.SetToken(out.Token)
	return out.Token, nil
}

func (c *AuthClient) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

func (c *AuthClient) CurrentUser() (*model.User, bool) {
	return c.session.User()
}

func (c *AuthClient) Token() (string, bool) {
	return c.session.Token()
}

func (c *AuthClient) ClearSession() {
	c.session.Clear()
}
