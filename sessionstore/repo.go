package sessionstore

import (
	"context"

	"github.com/jrsteele09/go-cinema-auth/session"
)

// Repo persists sessions keyed by an opaque session ID. Deleting the record
// destroys the session.
type Repo interface {
	Upsert(ctx context.Context, sessionID string, s *session.Session) error
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
