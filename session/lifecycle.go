package session

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Lifecycle is the authentication state machine for one principal. It owns the
// authoritative Session; callers only ever see Snapshots or clones.
//
// Lifecycle does not lock. Callers that share one across goroutines must
// serialise transitions themselves.
type Lifecycle struct {
	authority *Authority
	state     State
	session   *Session
	lastErr   error
}

// NewLifecycle starts in StateUnauthenticated.
func (a *Authority) NewLifecycle() *Lifecycle {
	return &Lifecycle{authority: a, state: StateUnauthenticated}
}

// Resume rebuilds a lifecycle around a previously persisted session.
func (a *Authority) Resume(s *Session) *Lifecycle {
	l := a.NewLifecycle()
	if s != nil {
		l.session = s.Clone()
		l.state = stateOf(l.session)
	}
	return l
}

func (l *Lifecycle) State() State {
	return l.state
}

// Err returns the cause of the last failed transition, if any.
func (l *Lifecycle) Err() error {
	return l.lastErr
}

// Session returns a copy of the authoritative session, or nil when unauthenticated.
func (l *Lifecycle) Session() *Session {
	return l.session.Clone()
}

// SignInWithCredentials returns ok=false when no session was produced. The cause is
// available from Err; it is deliberately not part of the result.
func (l *Lifecycle) SignInWithCredentials(ctx context.Context, email, password string) (Snapshot, bool) {
	return l.signIn(func() (*Session, error) {
		return l.authority.SignInWithCredentials(ctx, email, password)
	}, "credentials")
}

// SignInWithFederatedAssertion returns false when the backend rejected the assertion.
func (l *Lifecycle) SignInWithFederatedAssertion(ctx context.Context, assertion FederatedAssertion) (Snapshot, bool) {
	return l.signIn(func() (*Session, error) {
		return l.authority.SignInWithFederatedAssertion(ctx, assertion)
	}, "google")
}

func (l *Lifecycle) signIn(exchange func() (*Session, error), provider string) (Snapshot, bool) {
	l.state = StateAuthenticating

	s, err := exchange()
	if err != nil {
		l.lastErr = err
		log.Debug().Err(err).Str("provider", provider).Msg("Sign-in failed")
		// a failed re-login leaves an existing session alone
		l.state = stateOf(l.session)
		return Snapshot{}, false
	}

	l.lastErr = nil
	l.session = s
	l.state = StateAuthenticated
	return l.authority.Materialize(l.session), true
}

// Read is the read path: it refreshes an expired access token before returning the
// snapshot, so the caller never proceeds with a token that was known to be expired.
func (l *Lifecycle) Read(ctx context.Context) Snapshot {
	if l.session == nil {
		return Snapshot{}
	}
	if err := l.authority.RefreshIfExpired(ctx, l.session); err != nil {
		l.lastErr = err
		log.Error().Err(err).Str("user_id", l.session.ID).Msg("Refresh token error")
	}
	l.state = stateOf(l.session)
	return l.authority.Materialize(l.session)
}

// SignOut destroys the session.
func (l *Lifecycle) SignOut() {
	l.session = nil
	l.lastErr = nil
	l.state = StateUnauthenticated
}

func stateOf(s *Session) State {
	switch {
	case s == nil:
		return StateUnauthenticated
	case s.Error != "":
		return StateAuthenticatedWithError
	default:
		return StateAuthenticated
	}
}
