package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-dashboard/internal/event"
	"go-auth-dashboard/internal/model"
)

func newTestProvider(t *testing.T) (*SessionProvider, *testClients, <-chan event.Event) {
	t.Helper()

	c := newTestClients(t)
	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	t.Cleanup(unsubscribe)

	p := NewSessionProvider(c.auth, c.profile, bus)
	c.transport.OnSessionExpired(p.HandleSessionExpired)
	return p, c, events
}

func nextEvent(t *testing.T, events <-chan event.Event) event.Event {
	t.Helper()

	select {
	case e := <-events:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return event.Event{}
	}
}

func TestProviderLoadingUntilInit(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestProvider(t)
	assert.True(t, p.IsLoading())

	p.Init(context.Background())
	state := p.State()
	assert.False(t, state.Loading)
	assert.False(t, state.Authenticated)
	assert.Nil(t, state.User)
}

func TestProviderInitAdoptsCachedSession(t *testing.T) {
	t.Parallel()

	t.Run("token and user", func(t *testing.T) {
		t.Parallel()

		p, c, _ := newTestProvider(t)
		c.signIn()

		p.Init(context.Background())
		user, ok := p.User()
		require.True(t, ok)
		assert.Equal(t, "u1", user.ID)
		assert.True(t, p.IsAuthenticated())
	})

	t.Run("user without token", func(t *testing.T) {
		t.Parallel()

		p, c, _ := newTestProvider(t)
		c.session.SetUser(testUser())

		p.Init(context.Background())
		assert.False(t, p.IsAuthenticated())
	})

	t.Run("token without user", func(t *testing.T) {
		t.Parallel()

		p, c, _ := newTestProvider(t)
		c.session.SetToken("t1")

		p.Init(context.Background())
		assert.False(t, p.IsAuthenticated())
	})

	t.Run("runs once", func(t *testing.T) {
		t.Parallel()

		p, c, _ := newTestProvider(t)
		p.Init(context.Background())
		c.signIn()
		p.Init(context.Background())
		assert.False(t, p.IsAuthenticated())
	})
}

func TestProviderLoginPublishesSessionStarted(t *testing.T) {
	t.Parallel()

	p, c, events := newTestProvider(t)
	p.Init(context.Background())
	c.api.on(http.MethodPost, "/auth/login", reply(http.StatusOK, authPayload()))

	require.NoError(t, p.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "pw"}))

	state := p.State()
	assert.True(t, state.Authenticated)
	assert.False(t, state.Loading)
	assert.Equal(t, "ada@example.com", state.User.Email)

	e := nextEvent(t, events)
	assert.Equal(t, event.TypeSessionStarted, e.Type)
	assert.Equal(t, "u1", e.UserID)
}

func TestProviderLoginFailureKeepsSignedOut(t *testing.T) {
	t.Parallel()

	p, c, _ := newTestProvider(t)
	p.Init(context.Background())
	c.api.on(http.MethodPost, "/auth/login", remoteError(http.StatusUnauthorized, "Invalid credentials"))

	require.Error(t, p.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "bad"}))
	assert.False(t, p.IsAuthenticated())
	assert.False(t, p.IsLoading())
}

func TestProviderLogoutWhileOffline(t *testing.T) {
	t.Parallel()

	p, c, events := newTestProvider(t)
	c.signIn()
	p.Init(context.Background())
	c.server.Close()

	err := p.Logout(context.Background())
	require.Error(t, err)
	assert.False(t, p.IsAuthenticated())
	requireEmptySession(t, c.session)

	e := nextEvent(t, events)
	assert.Equal(t, event.TypeSessionEnded, e.Type)
	assert.Equal(t, "u1", e.UserID)
}

func TestProviderCheckEmail(t *testing.T) {
	t.Parallel()

	p, c, _ := newTestProvider(t)
	c.api.on(http.MethodPost, "/auth/check-email", reply(http.StatusOK, model.EmailCheckResponse{Exists: true, Email: "ada@example.com"}))

	exists, err := p.CheckEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProviderExpiresWhenRefreshFails(t *testing.T) {
	t.Parallel()

	p, c, events := newTestProvider(t)
	c.signIn()
	p.Init(context.Background())
	require.True(t, p.IsAuthenticated())

	c.api.on(http.MethodGet, "/user/profile", remoteError(http.StatusUnauthorized, "Token expired"))
	c.api.on(http.MethodPost, "/auth/refresh", remoteError(http.StatusUnauthorized, "Refresh token revoked"))

	_, err := p.RefreshProfile(context.Background())
	require.Error(t, err)
	assert.False(t, p.IsAuthenticated())
	requireEmptySession(t, c.session)

	e := nextEvent(t, events)
	assert.Equal(t, event.TypeSessionExpired, e.Type)
}

func TestProviderUpdateProfile(t *testing.T) {
	t.Parallel()

	p, c, events := newTestProvider(t)
	c.signIn()
	p.Init(context.Background())

	updated := testUser()
	updated.FirstName = "Grace"
	c.api.on(http.MethodPut, "/user/update", reply(http.StatusOK, updated))

	user, err := p.UpdateProfile(context.Background(), model.UpdateProfileRequest{FirstName: "Grace", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", user.FirstName)

	current, _ := p.User()
	assert.Equal(t, "Grace", current.FirstName)
	assert.Equal(t, event.TypeUserUpdated, nextEvent(t, events).Type)
}

// gate holds a remote handler until the test releases it.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gate) hold(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.entered <- struct{}{}
		select {
		case <-g.release:
		case <-r.Context().Done():
			return
		}
		next(w, r)
	}
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()

	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("remote call never arrived")
	}
}

func TestProviderLoadingWhileOperationInFlight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		signed  bool
		handler http.HandlerFunc
		run     func(p *SessionProvider) error
		wantErr bool
		wantIn  bool
	}{
		{
			name:    "login success",
			path:    "/auth/login",
			handler: reply(http.StatusOK, authPayload()),
			run: func(p *SessionProvider) error {
				return p.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "pw"})
			},
			wantIn: true,
		},
		{
			name:    "login failure",
			path:    "/auth/login",
			handler: remoteError(http.StatusUnauthorized, "Invalid credentials"),
			run: func(p *SessionProvider) error {
				return p.Login(context.Background(), model.LoginRequest{Email: "ada@example.com", Password: "bad"})
			},
			wantErr: true,
		},
		{
			name:    "register success",
			path:    "/auth/register",
			handler: reply(http.StatusCreated, authPayload()),
			run: func(p *SessionProvider) error {
				return p.Register(context.Background(), model.RegisterRequest{Email: "ada@example.com", Password: "password123"})
			},
			wantIn: true,
		},
		{
			name:    "register failure",
			path:    "/auth/register",
			handler: remoteError(http.StatusConflict, "This email is already in use."),
			run: func(p *SessionProvider) error {
				return p.Register(context.Background(), model.RegisterRequest{Email: "ada@example.com", Password: "password123"})
			},
			wantErr: true,
		},
		{
			name:    "logout",
			path:    "/auth/logout",
			signed:  true,
			handler: reply(http.StatusOK, map[string]string{"message": "Logged out"}),
			run:     func(p *SessionProvider) error { return p.Logout(context.Background()) },
		},
		{
			name:    "logout failure",
			path:    "/auth/logout",
			signed:  true,
			handler: remoteError(http.StatusInternalServerError, "boom"),
			run:     func(p *SessionProvider) error { return p.Logout(context.Background()) },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p, c, _ := newTestProvider(t)
			if tc.signed {
				c.signIn()
			}
			p.Init(context.Background())
			require.False(t, p.IsLoading())

			g := newGate()
			c.api.on(http.MethodPost, tc.path, g.hold(tc.handler))

			result := make(chan error, 1)
			go func() { result <- tc.run(p) }()

			g.waitEntered(t)
			assert.True(t, p.IsLoading())
			close(g.release)

			select {
			case err := <-result:
				if tc.wantErr {
					require.Error(t, err)
				} else {
					require.NoError(t, err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("operation did not finish")
			}

			assert.False(t, p.IsLoading())
			assert.Equal(t, tc.wantIn, p.IsAuthenticated())
		})
	}
}

func TestProviderRefreshProfileAfterLogoutStaysSignedOut(t *testing.T) {
	t.Parallel()

	p, c, _ := newTestProvider(t)
	c.signIn()
	p.Init(context.Background())

	c.api.on(http.MethodPost, "/auth/logout", reply(http.StatusOK, map[string]string{"message": "Logged out"}))
	c.api.on(http.MethodGet, "/user/profile", func(w http.ResponseWriter, r *http.Request) {
		_ = p.Logout(context.Background())
		respond(w, http.StatusOK, testUser())
	})

	_, err := p.RefreshProfile(context.Background())
	require.ErrorIs(t, err, model.ErrNotLoggedIn)
	assert.False(t, p.IsAuthenticated())
	requireEmptySession(t, c.session)
}
