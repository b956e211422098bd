package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-cinema-auth/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySnapshot stores the materialized session of the caller
	ContextKeySnapshot ContextKey = "session_snapshot"
)

// SnapshotFromContext returns the snapshot injected by RequireSession.
func SnapshotFromContext(ctx context.Context) (session.Snapshot, bool) {
	snap, ok := ctx.Value(ContextKeySnapshot).(session.Snapshot)
	return snap, ok
}

// RequireSession runs the read path for the request's session cookie and only lets
// requests through whose snapshot can be used for bearer calls. A session tagged with
// a refresh error is rejected so the storefront prompts for a new sign-in.
func (s *Server) RequireSession() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			snap, ok, err := s.readSession(w, r)
			if err != nil {
				writeSessionUnavailable(w)
				return
			}
			if !ok || !snap.HasUser() {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Sign in required")
				return
			}
			if !snap.Authenticated() {
				writeJSONError(w, http.StatusUnauthorized, string(snap.Error), "Session expired, sign in again")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySnapshot, snap)
			next(w, r.WithContext(ctx))
		}
	}
}
