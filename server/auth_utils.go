package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/rs/zerolog/log"
)

const (
	// sessionCookieName holds the signed session token
	sessionCookieName = "cinema.session-token"

	contentTypeJSON = "application/json"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, r, "", -1)
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// readSession runs the read path for the request. ok is false when the request has
// no usable session; the cookie is cleared only when the session is gone for good.
// err is set when the session could not be read right now and the cookie is kept.
func (s *Server) readSession(w http.ResponseWriter, r *http.Request) (snap session.Snapshot, ok bool, err error) {
	token := sessionToken(r)
	if token == "" {
		return session.Snapshot{}, false, nil
	}
	snap, err = s.sessions.Read(r.Context(), token)
	switch {
	case err == nil:
		return snap, true, nil
	case isSessionGone(err):
		s.clearSessionCookie(w, r)
		return session.Snapshot{}, false, nil
	default:
		log.Err(err).Msg("Failed to read session")
		return session.Snapshot{}, false, err
	}
}

func isSessionGone(err error) bool {
	return apperrors.Is(err, apperrors.ErrSessionNotFound) ||
		apperrors.Is(err, apperrors.ErrInvalidToken) ||
		apperrors.Is(err, apperrors.ErrTokenExpired)
}

func writeSessionUnavailable(w http.ResponseWriter) {
	writeJSONError(w, http.StatusServiceUnavailable, "session_unavailable", "Session could not be read, try again")
}

// loginErrorURL is the sign-in page with an error code, as an absolute URL.
func (s *Server) loginErrorURL(code string) string {
	return s.baseURL + RouteLogin + "?error=" + url.QueryEscape(code)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": description})
}
