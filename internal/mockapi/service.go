// Package mockapi is an in-memory implementation of the remote auth API used
// for local development and end-to-end tests.
package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/util"
	"go-auth-dashboard/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type Options struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
}

type account struct {
	user         model.User
	passwordHash []byte
}

type tokenClaims struct {
	Type       string `json:"typ"`
	Email      string `json:"email,omitempty"`
	Generation int64  `json:"gen,omitempty"`
	jwt.RegisteredClaims
}

// Service holds users, password hashes and the refresh-token registry.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	cost       int

	generation   atomic.Int64
	refreshCalls atomic.Int64

	mu            sync.RWMutex
	byEmail       map[string]*account
	byID          map[string]*account
	refreshTokens map[string]string
}

func NewService(opts Options) *Service {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = uuid.NewString()
	}

	return &Service{
		secret:        []byte(opts.JWTSecret),
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		cost:          opts.BcryptCost,
		byEmail:       map[string]*account{},
		byID:          map[string]*account{},
		refreshTokens: map[string]string{},
	}
}

func (s *Service) CheckEmail(email string) (model.EmailCheckResponse, error) {
	email = util.NormalizeEmail(email)
	if !util.IsEmail(email) {
		return model.EmailCheckResponse{}, badRequest("email must be an email")
	}

	s.mu.RLock()
	_, exists := s.byEmail[email]
	s.mu.RUnlock()

	return model.EmailCheckResponse{Exists: exists, Email: email}, nil
}

func (s *Service) Register(req model.RegisterRequest) (model.AuthResponse, error) {
	email := util.NormalizeEmail(req.Email)

	var problems []string
	if !util.IsEmail(email) {
		problems = append(problems, "email must be an email")
	}
	if len([]rune(req.Password)) < util.MinPasswordLength {
		problems = append(problems, "password must be longer than or equal to 8 characters")
	}
	if len(problems) > 0 {
		return model.AuthResponse{}, badRequest(problems...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	acct := &account{
		user: model.User{
			ID:        uuid.NewString(),
			Email:     email,
			FirstName: util.SanitizeName(req.FirstName),
			LastName:  util.SanitizeName(req.LastName),
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hash,
	}

	s.mu.Lock()
	if _, exists := s.byEmail[email]; exists {
		s.mu.Unlock()
		return model.AuthResponse{}, remoteError(http.StatusConflict, "Email already registered")
	}
	s.byEmail[email] = acct
	s.byID[acct.user.ID] = acct
	s.mu.Unlock()

	return s.issue(acct.user)
}

func (s *Service) Login(req model.LoginRequest) (model.AuthResponse, error) {
	s.mu.RLock()
	acct, exists := s.byEmail[util.NormalizeEmail(req.Email)]
	s.mu.RUnlock()

	if !exists || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		return model.AuthResponse{}, remoteError(http.StatusUnauthorized, "Invalid credentials")
	}

	return s.issue(acct.user)
}

// Refresh trades a registered refresh token for a new access token. The
// refresh token itself stays valid.
func (s *Service) Refresh(refreshToken string) (model.RefreshResponse, error) {
	s.refreshCalls.Add(1)

	claims, err := s.parse(strings.TrimSpace(refreshToken), tokenTypeRefresh)
	if err != nil {
		return model.RefreshResponse{}, remoteError(http.StatusUnauthorized, "Invalid refresh token")
	}

	s.mu.RLock()
	owner, registered := s.refreshTokens[claims.ID]
	acct, userExists := s.byID[claims.Subject]
	s.mu.RUnlock()

	if !registered || owner != claims.Subject || !userExists {
		return model.RefreshResponse{}, remoteError(http.StatusUnauthorized, "Invalid refresh token")
	}

	access, err := s.sign(acct.user, tokenTypeAccess, uuid.NewString(), s.accessTTL)
	if err != nil {
		return model.RefreshResponse{}, err
	}
	return model.RefreshResponse{Token: access}, nil
}

// Logout revokes every refresh token held by the user.
func (s *Service) Logout(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, owner := range s.refreshTokens {
		if owner == userID {
			delete(s.refreshTokens, id)
		}
	}
}

func (s *Service) Profile(userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, exists := s.byID[userID]
	if !exists {
		return model.User{}, remoteError(http.StatusNotFound, "User not found")
	}
	return acct.user, nil
}

func (s *Service) UpdateProfile(userID string, req model.UpdateProfileRequest) (model.User, error) {
	first := util.SanitizeName(req.FirstName)
	last := util.SanitizeName(req.LastName)
	if first == "" && last == "" {
		return model.User{}, badRequest("firstName or lastName should not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, exists := s.byID[userID]
	if !exists {
		return model.User{}, remoteError(http.StatusNotFound, "User not found")
	}
	acct.user.FirstName = first
	acct.user.LastName = last
	acct.user.UpdatedAt = time.Now().UTC()
	return acct.user, nil
}

// Authenticate validates an access token and returns its subject.
func (s *Service) Authenticate(accessToken string) (string, error) {
	claims, err := s.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return "", remoteError(http.StatusUnauthorized, "Unauthorized")
	}
	if claims.Generation != s.generation.Load() {
		return "", remoteError(http.StatusUnauthorized, "Token expired")
	}
	return claims.Subject, nil
}

// ExpireAccessTokens invalidates every access token issued so far, as if
// they had all reached their expiry. Refresh tokens are unaffected.
func (s *Service) ExpireAccessTokens() {
	s.generation.Add(1)
}

// RevokeRefreshTokens drops every registered refresh token.
func (s *Service) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refreshTokens = map[string]string{}
	s.mu.Unlock()
}

func (s *Service) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

func (s *Service) issue(user model.User) (model.AuthResponse, error) {
	access, err := s.sign(user, tokenTypeAccess, uuid.NewString(), s.accessTTL)
	if err != nil {
		return model.AuthResponse{}, err
	}

	refreshID := ulid.Make().String()
	refresh, err := s.sign(user, tokenTypeRefresh, refreshID, s.refreshTTL)
	if err != nil {
		return model.AuthResponse{}, err
	}

	s.mu.Lock()
	s.refreshTokens[refreshID] = user.ID
	s.mu.Unlock()

	return model.AuthResponse{User: user, Token: access, RefreshToken: refresh}, nil
}

func (s *Service) sign(user model.User, typ string, id string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Type:  typ,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if typ == tokenTypeAccess {
		claims.Generation = s.generation.Load()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parse(raw string, expectedType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Type != expectedType || claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func remoteError(status int, message string) *apierror.APIError {
	return apierror.New(http.StatusText(status), message, status)
}

// validationError carries one or more field messages. They are sent as a
// list, the way the real API reports field validation.
type validationError struct {
	err      *apierror.APIError
	messages []string
}

func (e *validationError) Error() string { return e.err.Error() }

func (e *validationError) Unwrap() error { return e.err }

func badRequest(messages ...string) error {
	return &validationError{
		err:      remoteError(http.StatusBadRequest, strings.Join(messages, "; ")),
		messages: messages,
	}
}

// Seed registers a user up front, e.g. a demo account for local runs.
func (s *Service) Seed(email string, password string, firstName string, lastName string) (model.User, error) {
	resp, err := s.Register(model.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return model.User{}, err
	}

	s.Logout(resp.User.ID)
	return resp.User, nil
}
