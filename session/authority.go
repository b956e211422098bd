package session

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-cinema-auth/authapi"
	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/internal/utils"
	"github.com/rs/zerolog/log"
)

// API is the part of the booking API the authority depends on.
type API interface {
	Login(ctx context.Context, email, password string) (*authapi.AuthData, error)
	GoogleLogin(ctx context.Context, idToken string) (*authapi.AuthData, error)
	Refresh(ctx context.Context, refreshToken string) (*authapi.RefreshData, error)
	Profile(ctx context.Context, accessToken string) (*authapi.Profile, error)
}

var _ API = (*authapi.Client)(nil)

// FederatedAssertion is what an identity provider hands back after a federated login.
// Identity holds the provider's own claims and is only used where the backend is silent.
type FederatedAssertion struct {
	IDToken  string
	Identity Identity
}

// Authority implements the session transitions. It holds no per-user state;
// see Lifecycle for the state machine that owns a single session.
type Authority struct {
	api API
	now func() time.Time
}

type Option func(*Authority)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		a.now = now
	}
}

func NewAuthority(api API, opts ...Option) *Authority {
	a := &Authority{
		api: api,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SignInWithCredentials logs in with email and password and enriches the identity from
// the profile endpoint. A failed profile fetch is tolerated: the identity is built
// from the login response instead.
func (a *Authority) SignInWithCredentials(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, newAuthError(apperrors.ErrValidation, msgCredentialsRequired, nil)
	}

	login, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, newAuthError(apperrors.ErrAuthentication, utils.FirstNonEmpty(authapi.ServerMessage(err), msgLoginFailed), err)
	}

	s := &Session{TokenPair: tokensFromAuthData(login)}

	profile, err := a.api.Profile(ctx, login.AccessToken)
	if err != nil {
		log.Warn().Err(err).Str("user_id", login.ID.String()).Msg("Profile fetch failed, using login data only")
		s.Identity = Identity{
			ID:    utils.FirstNonEmpty(login.ID.String(), "unknown"),
			Email: utils.FirstNonEmpty(login.Email, email),
			Name:  utils.FirstNonEmpty(login.Name, email),
			Role:  Role(utils.FirstNonEmpty(login.Role, string(RoleUser))),
		}
		return s, nil
	}

	fullName := strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	s.Identity = Identity{
		ID:    utils.FirstNonEmpty(profile.ID.String(), login.ID.String(), "unknown"),
		Email: utils.FirstNonEmpty(profile.Email, login.Email, email),
		Name:  utils.FirstNonEmpty(fullName, login.Name, email),
		Role:  Role(utils.FirstNonEmpty(profile.Role, login.Role, string(RoleUser))),
	}
	return s, nil
}

// SignInWithFederatedAssertion exchanges an identity provider's ID token with the backend.
// There is no degraded mode: without a backend token pair the sign-in is rejected.
func (a *Authority) SignInWithFederatedAssertion(ctx context.Context, assertion FederatedAssertion) (*Session, error) {
	if assertion.IDToken == "" {
		return nil, newAuthError(apperrors.ErrValidation, msgIDTokenRequired, nil)
	}

	data, err := a.api.GoogleLogin(ctx, assertion.IDToken)
	if err != nil {
		return nil, newAuthError(apperrors.ErrFederatedAuth, utils.FirstNonEmpty(authapi.ServerMessage(err), msgGoogleLoginFailed), err)
	}

	return &Session{
		Identity: Identity{
			ID:    utils.FirstNonEmpty(data.ID.String(), "unknown"),
			Email: utils.FirstNonEmpty(data.Email, assertion.Identity.Email),
			Name:  utils.FirstNonEmpty(data.Name, assertion.Identity.Name),
			Role:  Role(utils.FirstNonEmpty(data.Role, string(assertion.Identity.Role), string(RoleUser))),
		},
		TokenPair: tokensFromAuthData(data),
	}, nil
}

// NeedsRefresh reports whether a read at the current time must refresh s.
// Expiry is held in seconds and compared against a millisecond clock. A session
// without an expiry never needs a refresh, and a refresh is attempted at most
// once per clock reading.
func (a *Authority) NeedsRefresh(s *Session) bool {
	if s == nil || s.AccessTokenExpiresAt == 0 {
		return false
	}
	nowMillis := a.now().UnixMilli()
	if nowMillis < s.AccessTokenExpiresAt*1000 {
		return false
	}
	return s.RefreshAttemptedAt != nowMillis
}

// RefreshIfExpired refreshes s in place when its access token has expired.
// On failure s is tagged with RefreshAccessTokenError and keeps its stale tokens;
// the returned error only describes the cause.
func (a *Authority) RefreshIfExpired(ctx context.Context, s *Session) error {
	if !a.NeedsRefresh(s) {
		return nil
	}
	s.RefreshAttemptedAt = a.now().UnixMilli()

	data, err := a.api.Refresh(ctx, s.RefreshToken)
	if err != nil {
		s.Error = RefreshAccessTokenError
		return newAuthError(apperrors.ErrRefreshAccessToken, utils.FirstNonEmpty(authapi.ServerMessage(err), msgRefreshFailed), err)
	}

	s.TokenPair = TokenPair{
		AccessToken:          data.AccessToken,
		RefreshToken:         data.RefreshToken,
		AccessTokenExpiresAt: utils.Value(data.AccessTokenExpires),
	}
	s.Error = ""
	return nil
}

// Materialize projects s into the snapshot consumers see. A session tagged with an
// error keeps its identity visible but its tokens are withheld.
func (a *Authority) Materialize(s *Session) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		User: &SnapshotUser{
			ID:    s.ID,
			Email: s.Email,
			Name:  s.Name,
			Role:  s.Role,
		},
	}
	if s.Error != "" {
		snap.Error = s.Error
		return snap
	}
	snap.AccessToken = s.AccessToken
	snap.RefreshToken = s.RefreshToken
	snap.AccessTokenExpiresAt = s.AccessTokenExpiresAt
	return snap
}

func tokensFromAuthData(d *authapi.AuthData) TokenPair {
	return TokenPair{
		AccessToken:          d.AccessToken,
		RefreshToken:         d.RefreshToken,
		AccessTokenExpiresAt: utils.Value(d.AccessTokenExpires),
	}
}
