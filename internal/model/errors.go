package model

import "errors"

var (
	// Session related errors
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNotLoggedIn    = errors.New("not logged in")
)
