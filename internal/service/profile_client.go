package service

import (
	"context"
	"net/http"
	"strings"

	"go-auth-dashboard/internal/apiclient"
	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/session"
	"go-auth-dashboard/pkg/apierror"
)

const (
	pathProfile       = "/user/profile"
	pathProfileUpdate = "/user/update"
)

// ProfileClient reads and edits the signed-in user's profile. Successful
// calls replace the cached user record.
type ProfileClient struct {
	api     *apiclient.Client
	session *session.Session
}

func NewProfileClient(api *apiclient.Client, sess *session.Session) *ProfileClient {
	return &ProfileClient{api: api, session: sess}
}

func (c *ProfileClient) Profile(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.api.Get(ctx, pathProfile, &user); err != nil {
		return model.User{}, err
	}

	if err := c.cache(user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (c *ProfileClient) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (model.User, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	var user model.User
	if err := c.api.Put(ctx, pathProfileUpdate, req, &user); err != nil {
		return model.User{}, err
	}

	if err := c.cache(user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// cache stores user unless the session ended while the call was in flight.
func (c *ProfileClient) cache(user model.User) error {
	if _, ok := c.session.Token(); !ok {
		return apierror.Wrap(model.ErrNotLoggedIn, "NOT_LOGGED_IN", "session ended before the profile arrived", http.StatusUnauthorized)
	}
	c.session.SetUser(user)
	return nil
}
