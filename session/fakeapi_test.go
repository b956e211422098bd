package session_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-cinema-auth/authapi"
	"github.com/jrsteele09/go-cinema-auth/session"
)

const (
	testEmail    = "a@b.com"
	testPassword = "secret"
	testBaseURL  = "https://app.example.com"
)

type response struct {
	status int
	body   string
}

// fakeAPI is an httptest stand-in for the booking API that counts calls per endpoint.
type fakeAPI struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]response
	bodies    map[string]string
	authz     string

	calls map[string]*atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		responses: map[string]response{},
		bodies:    map[string]string{},
		calls:     map[string]*atomic.Int32{},
	}
	mux := http.NewServeMux()
	for _, path := range []string{authapi.PathLogin, authapi.PathGoogle, authapi.PathRefresh, authapi.PathProfile} {
		f.calls[path] = &atomic.Int32{}
		mux.HandleFunc(path, f.handler(path))
	}
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.calls[path].Add(1)
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.bodies[path] = string(body)
		if path == authapi.PathProfile {
			f.authz = r.Header.Get("Authorization")
		}
		resp, ok := f.responses[path]
		f.mu.Unlock()

		if !ok {
			resp = response{status: http.StatusNotFound, body: `{"message":"not found"}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}
}

func (f *fakeAPI) respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = response{status: status, body: body}
}

func (f *fakeAPI) callCount(path string) int {
	return int(f.calls[path].Load())
}

func (f *fakeAPI) totalCalls() int {
	total := 0
	for path := range f.calls {
		total += f.callCount(path)
	}
	return total
}

func (f *fakeAPI) lastBody(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

func (f *fakeAPI) lastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authz
}

func (f *fakeAPI) client() *authapi.Client {
	return authapi.New(f.server.URL, f.server.Client())
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Unix() int64 {
	return c.Now().Unix()
}

func newAuthority(f *fakeAPI, clock *testClock) *session.Authority {
	return session.NewAuthority(f.client(), session.WithClock(clock.Now))
}
