package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-auth-dashboard/internal/apiclient"
	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/session"
)

// remoteAPI is a scripted stand-in for the auth backend. Routes not set
// answer 404.
type remoteAPI struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	auth   map[string][]string
}

func newRemoteAPI() *remoteAPI {
	return &remoteAPI{
		routes: map[string]http.HandlerFunc{},
		calls:  map[string]int{},
		auth:   map[string][]string{},
	}
}

func (a *remoteAPI) on(method string, path string, fn http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" "+path] = fn
}

func (a *remoteAPI) count(method string, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[method+" "+path]
}

func (a *remoteAPI) authHeaders(method string, path string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.auth[method+" "+path]...)
}

func (a *remoteAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	a.mu.Lock()
	a.calls[key]++
	a.auth[key] = append(a.auth[key], r.Header.Get("Authorization"))
	fn, ok := a.routes[key]
	a.mu.Unlock()

	if !ok {
		respond(w, http.StatusNotFound, map[string]any{"message": "Cannot " + key, "statusCode": 404, "error": "Not Found"})
		return
	}
	fn(w, r)
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func reply(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond(w, status, body)
	}
}

func remoteError(status int, message string) http.HandlerFunc {
	return reply(status, map[string]any{"message": message, "statusCode": status, "error": http.StatusText(status)})
}

func testUser() model.User {
	return model.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
}

func authPayload() model.AuthResponse {
	return model.AuthResponse{User: testUser(), Token: "t1", RefreshToken: "r1"}
}

type testClients struct {
	api       *remoteAPI
	server    *httptest.Server
	session   *session.Session
	transport *apiclient.AuthTransport
	auth      *AuthClient
	profile   *ProfileClient
}

func newTestClients(t *testing.T) *testClients {
	t.Helper()

	api := newRemoteAPI()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	sess := session.New(session.NewMemoryStore())
	transport := apiclient.NewAuthTransport(server.URL, sess)
	client := apiclient.New(server.URL, transport, 2*time.Second)

	return &testClients{
		api:       api,
		server:    server,
		session:   sess,
		transport: transport,
		auth:      NewAuthClient(client, sess),
		profile:   NewProfileClient(client, sess),
	}
}

func (c *testClients) signIn() {
	c.session.Save(authPayload())
}

func requireEmptySession(t *testing.T, sess *session.Session) {
	t.Helper()

	_, ok := sess.Token()
	require.False(t, ok, "token should be cleared")
	_, ok = sess.RefreshToken()
	require.False(t, ok, "refresh token should be cleared")
	_, ok = sess.User()
	require.False(t, ok, "user should be cleared")
}
