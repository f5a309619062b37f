package service

import (
	"context"
	"sync"

	"go-auth-dashboard/internal/event"
	"go-auth-dashboard/internal/model"
)

// SessionState is a point-in-time view of the provider.
type SessionState struct {
	User          *model.User
	Authenticated bool
	Loading       bool
}

// SessionProvider owns the in-process view of the session: who is signed in
// and whether an auth operation is in flight. It is created once at startup
// and handed to every component that needs it.
type SessionProvider struct {
	auth    *AuthClient
	profile *ProfileClient
	bus     event.Bus

	initOnce sync.Once

	mu      sync.RWMutex
	user    *model.User
	ready   bool
	pending int
}

func NewSessionProvider(auth *AuthClient, profile *ProfileClient, bus event.Bus) *SessionProvider {
	return &SessionProvider{auth: auth, profile: profile, bus: bus}
}

// Init adopts the cached user when both a token and a user record are
// stored. Loading ends whatever the outcome. Later calls are no-ops.
func (p *SessionProvider) Init(_ context.Context) {
	p.initOnce.Do(func() {
		user, hasUser := p.auth.CurrentUser()
		authenticated := p.auth.IsAuthenticated()

		p.mu.Lock()
		if hasUser && authenticated {
			p.user = user
		}
		p.ready = true
		p.mu.Unlock()
	})
}

func (p *SessionProvider) State() SessionState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state := SessionState{
		Authenticated: p.user != nil,
		Loading:       !p.ready || p.pending > 0,
	}
	if p.user != nil {
		user := *p.user
		state.User = &user
	}
	return state
}

func (p *SessionProvider) User() (*model.User, bool) {
	state := p.State()
	return state.User, state.User != nil
}

func (p *SessionProvider) IsAuthenticated() bool {
	return p.State().Authenticated
}

func (p *SessionProvider) IsLoading() bool {
	return p.State().Loading
}

func (p *SessionProvider) Login(ctx context.Context, req model.LoginRequest) error {
	done := p.begin()
	defer done()

	auth, err := p.auth.Login(ctx, req)
	if err != nil {
		return err
	}

	p.adopt(auth.User, event.TypeSessionStarted)
	return nil
}

func (p *SessionProvider) Register(ctx context.Context, req model.RegisterRequest) error {
	done := p.begin()
	defer done()

	auth, err := p.auth.Register(ctx, req)
	if err != nil {
		return err
	}

	p.adopt(auth.User, event.TypeSessionStarted)
	return nil
}

// Logout forgets the current user even when the remote call fails; that
// failure is returned after the local state is cleared.
func (p *SessionProvider) Logout(ctx context.Context) error {
	done := p.begin()
	defer done()

	err := p.auth.Logout(ctx)
	p.forget(event.TypeSessionEnded)
	return err
}

func (p *SessionProvider) CheckEmail(ctx context.Context, email string) (bool, error) {
	resp, err := p.auth.CheckEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// RefreshProfile reloads the user from the API and adopts it.
func (p *SessionProvider) RefreshProfile(ctx context.Context) (model.User, error) {
	user, err := p.profile.Profile(ctx)
	if err != nil {
		return model.User{}, err
	}

	if !p.replace(user) {
		return model.User{}, model.ErrNotLoggedIn
	}
	return user, nil
}

func (p *SessionProvider) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (model.User, error) {
	done := p.begin()
	defer done()

	user, err := p.profile.UpdateProfile(ctx, req)
	if err != nil {
		return model.User{}, err
	}

	if !p.replace(user) {
		return model.User{}, model.ErrNotLoggedIn
	}
	return user, nil
}

// HandleSessionExpired is registered with the request pipeline and runs after
// it evicted the stored session.
func (p *SessionProvider) HandleSessionExpired() {
	p.forget(event.TypeSessionExpired)
}

func (p *SessionProvider) begin() func() {
	p.mu.Lock()
	p.pending++
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		p.pending--
		p.mu.Unlock()
	}
}

func (p *SessionProvider) adopt(user model.User, t event.Type) {
	p.mu.Lock()
	p.user = &user
	p.mu.Unlock()

	p.publish(event.New(t, user.ID, user))
}

// replace swaps in a reloaded user record. It reports false when nobody is
// signed in any more, e.g. a logout finished first.
func (p *SessionProvider) replace(user model.User) bool {
	p.mu.Lock()
	if p.user == nil {
		p.mu.Unlock()
		return false
	}
	p.user = &user
	p.mu.Unlock()

	p.publish(event.New(event.TypeUserUpdated, user.ID, user))
	return true
}

func (p *SessionProvider) forget(t event.Type) {
	p.mu.Lock()
	var userID string
	if p.user != nil {
		userID = p.user.ID
	}
	p.user = nil
	p.mu.Unlock()

	p.publish(event.New(t, userID, nil))
}

func (p *SessionProvider) publish(e event.Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}
