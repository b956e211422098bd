package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-cinema-auth/authapi"
	"github.com/jrsteele09/go-cinema-auth/flowstate"
	"github.com/jrsteele09/go-cinema-auth/internal/config"
	"github.com/jrsteele09/go-cinema-auth/server"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/jrsteele09/go-cinema-auth/sessionstore"
	"github.com/jrsteele09/go-cinema-auth/sessiontoken"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL  = "https://app.example.com"
	testEmail    = "a@b.com"
	testPassword = "secret"
	cookieName   = "cinema.session-token"

	csrfCookieName = "cinema.csrf-token"
	csrfFormField  = "csrfToken"
)

// bookingAPI is a scripted stand-in for the remote booking API.
type bookingAPI struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
	delay     time.Duration
	calls     map[string]*atomic.Int32
}

func newBookingAPI(t *testing.T) *bookingAPI {
	t.Helper()

	b := &bookingAPI{
		responses: map[string]string{},
		statuses:  map[string]int{},
		calls:     map[string]*atomic.Int32{},
	}
	mux := http.NewServeMux()
	for _, path := range []string{authapi.PathLogin, authapi.PathGoogle, authapi.PathRefresh, authapi.PathProfile} {
		path := path
		b.calls[path] = &atomic.Int32{}
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			b.calls[path].Add(1)
			_, _ = io.Copy(io.Discard, r.Body)

			b.mu.Lock()
			status, ok := b.statuses[path]
			body := b.responses[path]
			delay := b.delay
			b.mu.Unlock()

			time.Sleep(delay)
			if !ok {
				status, body = http.StatusNotFound, `{"message":"not found"}`
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		})
	}
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *bookingAPI) respond(path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[path] = status
	b.responses[path] = body
}

func (b *bookingAPI) setDelay(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = d
}

func (b *bookingAPI) callCount(path string) int {
	return int(b.calls[path].Load())
}

// fakeProvider records the flow parameters and returns a scripted assertion.
type fakeProvider struct {
	mu                     sync.Mutex
	assertion              session.FederatedAssertion
	err                    error
	state, nonce, verifier string
	gotVerifier, gotNonce  string
}

func (p *fakeProvider) ID() string {
	return "google"
}

func (p *fakeProvider) AuthCodeURL(state, nonce, codeVerifier string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state, p.nonce, p.verifier = state, nonce, codeVerifier
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code, codeVerifier, nonce string) (session.FederatedAssertion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gotVerifier, p.gotNonce = codeVerifier, nonce
	return p.assertion, p.err
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Unix() int64 {
	return c.Now().Unix()
}

// flakyRepo fails reads while getErr is set, like a store that is briefly unreachable.
type flakyRepo struct {
	sessionstore.Repo

	mu     sync.Mutex
	getErr error
}

func (r *flakyRepo) failGets(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr = err
}

func (r *flakyRepo) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	r.mu.Lock()
	err := r.getErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.Repo.Get(ctx, sessionID)
}

type fixture struct {
	api     *bookingAPI
	clock   *testClock
	repo    *sessionstore.InMemoryRepo
	store   *flakyRepo
	tokens  *sessiontoken.Codec
	manager *server.Manager
	google  *fakeProvider
	srv     *server.Server
}

func setupFixture(t *testing.T, withGoogle bool) *fixture {
	t.Helper()

	t.Setenv("ENV", "TEST")
	t.Setenv("BASE_URL", testBaseURL)

	api := newBookingAPI(t)
	clock := &testClock{now: time.Now()}
	authority := session.NewAuthority(authapi.New(api.server.URL, api.server.Client()), session.WithClock(clock.Now))
	repo := sessionstore.NewInMemoryRepo(time.Hour)
	store := &flakyRepo{Repo: repo}
	tokens, err := sessiontoken.New("test-secret", time.Hour)
	require.NoError(t, err)

	f := &fixture{
		api:     api,
		clock:   clock,
		repo:    repo,
		store:   store,
		tokens:  tokens,
		manager: server.NewManager(authority, store, tokens),
	}

	deps := server.Deps{Manager: f.manager, Flows: flowstate.NewInMemoryRepo(10 * time.Minute)}
	if withGoogle {
		f.google = &fakeProvider{}
		deps.Google = f.google
	}
	f.srv, err = server.New(config.New(), deps)
	require.NoError(t, err)
	return f
}

func (f *fixture) loginResponds(expires int64) {
	f.api.respond(authapi.PathLogin, http.StatusOK, fmt.Sprintf(`{"data":{"id":"1","email":"a@b.com","name":"Login Name","role":"USER","accessToken":"T1","refreshToken":"R1","accessTokenExpires":%d}}`, expires))
	f.api.respond(authapi.PathProfile, http.StatusOK, `{"id":"1","email":"a@b.com","firstName":"Jane","lastName":"Doe","role":"USER"}`)
}

func (f *fixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, r)
	return rec
}

// csrfToken fetches a token the way the login page does.
func (f *fixture) csrfToken(t *testing.T) string {
	t.Helper()
	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteCSRF, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.CSRFToken)

	cookie := findCookie(rec, csrfCookieName)
	require.NotNil(t, cookie)
	require.Equal(t, body.CSRFToken, cookie.Value)
	return body.CSRFToken
}

// signIn posts the login form with a valid CSRF token. sessionToken, when given,
// is the browser's current session cookie.
func (f *fixture) signIn(t *testing.T, form url.Values, sessionToken ...string) *httptest.ResponseRecorder {
	t.Helper()
	token := f.csrfToken(t)

	body := url.Values{csrfFormField: {token}}
	for k, v := range form {
		body[k] = v
	}
	r := httptest.NewRequest(http.MethodPost, server.RouteCredentialsCallback, strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	for _, st := range sessionToken {
		f.withCookie(r, st)
	}
	return f.do(r)
}

func (f *fixture) withCookie(r *http.Request, value string) *http.Request {
	r.AddCookie(&http.Cookie{Name: cookieName, Value: value})
	return r
}

// withCSRF attaches a CSRF cookie and the matching header.
func (f *fixture) withCSRF(t *testing.T, r *http.Request) *http.Request {
	t.Helper()
	token := f.csrfToken(t)
	r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	r.Header.Set("X-CSRF-Token", token)
	return r
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	return findCookie(rec, cookieName)
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func credentials(callbackURL string) url.Values {
	return url.Values{"email": {testEmail}, "password": {testPassword}, "callbackUrl": {callbackURL}}
}
