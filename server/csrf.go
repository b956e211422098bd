package server

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// csrfCookieName holds the double-submit token handed out by RouteCSRF
	csrfCookieName = "cinema.csrf-token"
	csrfFormField  = "csrfToken"
	csrfHeader     = "X-CSRF-Token"
)

// CSRFHandler hands out the token that state-changing auth routes expect back
// (GET /api/auth/csrf). An existing token is reused so open tabs keep working.
func (s *Server) CSRFHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := csrfCookie(r)
		if token == "" {
			token = generateRandomString(32)
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   getScheme(r) == "https",
				SameSite: http.SameSiteLaxMode,
			})
		}
		writeJSON(w, http.StatusOK, map[string]string{csrfFormField: token})
	}
}

// CSRFMiddleware rejects cross-site posts: the request must come from an allowed
// origin when the browser says where it came from, and must echo the CSRF cookie
// in the csrfToken form field or the X-CSRF-Token header.
func (s *Server) CSRFMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next(w, r)
			return
		}

		if source, ok := requestSource(r); ok && !s.config.GetAllowedOrigins().IsAllowedOrigin(source) {
			log.Warn().Str("source", source).Str("path", r.URL.Path).Msg("Cross-site auth request rejected")
			writeJSONError(w, http.StatusForbidden, "csrf_invalid", "Request origin not allowed")
			return
		}

		expected := csrfCookie(r)
		if expected == "" || !constantTimeEqual(expected, submittedCSRFToken(r)) {
			log.Warn().Str("path", r.URL.Path).Msg("Missing or invalid CSRF token")
			writeJSONError(w, http.StatusForbidden, "csrf_invalid", "Missing or invalid CSRF token")
			return
		}
		next(w, r)
	}
}

// requestSource is the origin the browser reports through Origin or, failing that,
// Referer. ok is false when neither header is sent.
func requestSource(r *http.Request) (string, bool) {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		return origin, true
	}
	referer := strings.TrimSpace(r.Referer())
	if referer == "" {
		return "", false
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "null", true
	}
	return u.Scheme + "://" + u.Host, true
}

func csrfCookie(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(csrfHeader); token != "" {
		return token
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostFormValue(csrfFormField)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
