package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/jrsteele09/go-cinema-auth/sessionstore"
	"github.com/jrsteele09/go-cinema-auth/sessiontoken"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Manager hosts the session authority for many browsers: it persists sessions,
// hands out opaque session tokens, and serialises refreshes per session.
type Manager struct {
	authority *session.Authority
	repo      sessionstore.Repo
	tokens    *sessiontoken.Codec
	reads     singleflight.Group
}

func NewManager(authority *session.Authority, repo sessionstore.Repo, tokens *sessiontoken.Codec) *Manager {
	return &Manager{
		authority: authority,
		repo:      repo,
		tokens:    tokens,
	}
}

// SignInWithCredentials returns the session token to hand to the browser. The
// error is the structured cause and is only meant for logging; callers show a
// generic "no session" result. previousToken is the browser's current session
// token, if any; it is replaced only when the sign-in succeeds.
func (m *Manager) SignInWithCredentials(ctx context.Context, previousToken, email, password string) (string, session.Snapshot, error) {
	l := m.authority.NewLifecycle()
	if _, ok := l.SignInWithCredentials(ctx, email, password); !ok {
		return "", session.Snapshot{}, l.Err()
	}
	return m.persist(ctx, l, previousToken)
}

// SignInWithFederatedAssertion returns an error when the backend rejected the assertion.
func (m *Manager) SignInWithFederatedAssertion(ctx context.Context, previousToken string, assertion session.FederatedAssertion) (string, session.Snapshot, error) {
	l := m.authority.NewLifecycle()
	if _, ok := l.SignInWithFederatedAssertion(ctx, assertion); !ok {
		return "", session.Snapshot{}, l.Err()
	}
	return m.persist(ctx, l, previousToken)
}

func (m *Manager) persist(ctx context.Context, l *session.Lifecycle, previousToken string) (string, session.Snapshot, error) {
	sessionID := uuid.NewString()
	s := l.Session()
	if err := m.repo.Upsert(ctx, sessionID, s); err != nil {
		return "", session.Snapshot{}, fmt.Errorf("[Manager persist] %w", err)
	}
	token, err := m.tokens.Issue(sessionID)
	if err != nil {
		_ = m.repo.Delete(ctx, sessionID)
		return "", session.Snapshot{}, fmt.Errorf("[Manager persist] %w", err)
	}
	if previousToken != "" {
		if err := m.SignOut(ctx, previousToken); err != nil {
			log.Err(err).Msg("Failed to delete replaced session")
		}
	}
	return token, m.authority.Materialize(s), nil
}

// Read resolves a session token to a snapshot, refreshing the access token first
// when it has expired. Concurrent reads of one session share a single refresh.
func (m *Manager) Read(ctx context.Context, token string) (session.Snapshot, error) {
	sessionID, err := m.tokens.Parse(token)
	if err != nil {
		return session.Snapshot{}, err
	}

	v, err, _ := m.reads.Do(sessionID, func() (any, error) {
		stored, err := m.repo.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		l := m.authority.Resume(stored)
		snap := l.Read(ctx)

		if current := l.Session(); *current != *stored {
			if err := m.repo.Upsert(ctx, sessionID, current); err != nil {
				// the caller still gets the fresh snapshot; the next read refreshes again
				log.Err(err).Str("session_id", sessionID).Msg("Failed to persist refreshed session")
			}
		}
		return snap, nil
	})
	if err != nil {
		return session.Snapshot{}, err
	}
	return v.(session.Snapshot).Clone(), nil
}

// SignOut destroys the session behind token. Unknown or invalid tokens are not an error.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	sessionID, err := m.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := m.repo.Delete(ctx, sessionID); err != nil && !apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return fmt.Errorf("[Manager SignOut] %w", err)
	}
	return nil
}

// CookieMaxAge is the lifetime of the session cookie in seconds.
func (m *Manager) CookieMaxAge() int {
	return int(m.tokens.MaxAge().Seconds())
}
