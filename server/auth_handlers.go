package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/internal/utils"
	"github.com/jrsteele09/go-cinema-auth/provider"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/rs/zerolog/log"
)

const credentialsProviderID = "credentials"

// ProviderInfo describes a sign-in option to the storefront.
type ProviderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// ProvidersHandler lists the configured sign-in providers (GET /api/auth/providers)
func (s *Server) ProvidersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := map[string]ProviderInfo{
			credentialsProviderID: {
				ID:          credentialsProviderID,
				Name:        "Credentials",
				Type:        "credentials",
				SignInURL:   s.baseURL + RouteLogin,
				CallbackURL: s.baseURL + RouteCredentialsCallback,
			},
		}
		if s.google != nil {
			providers[provider.GoogleID] = ProviderInfo{
				ID:          provider.GoogleID,
				Name:        "Google",
				Type:        "oidc",
				SignInURL:   s.baseURL + RouteGoogleSignIn,
				CallbackURL: s.baseURL + RouteGoogleCallback,
			}
		}
		writeJSON(w, http.StatusOK, providers)
	}
}

// CredentialsSignInHandler processes the login form (POST /api/auth/callback/credentials).
// Every failure looks the same to the browser; the cause is only logged.
func (s *Server) CredentialsSignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectSuccess(w, r, s.loginErrorURL(ErrorCredentialsSignin))
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		callbackURL := r.FormValue("callbackUrl")

		token, _, err := s.sessions.SignInWithCredentials(r.Context(), sessionToken(r), email, password)
		if err != nil {
			event := log.Warn()
			if !session.IsValidation(err) && !apperrors.Is(err, apperrors.ErrAuthentication) {
				event = log.Error()
			}
			event.Err(err).Str("provider", credentialsProviderID).Msg("Credentials sign-in failed")
			redirectSuccess(w, r, s.loginErrorURL(ErrorCredentialsSignin))
			return
		}

		s.setSessionCookie(w, r, token, s.sessions.CookieMaxAge())
		redirectSuccess(w, r, session.ResolveRedirect(utils.FirstNonEmpty(callbackURL, RouteHome), s.baseURL))
	}
}

// SessionHandler returns the caller's materialized session (GET /api/auth/session).
// An unauthenticated caller gets an empty object.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok, err := s.readSession(w, r)
		if err != nil {
			writeSessionUnavailable(w)
			return
		}
		if !ok || !snap.HasUser() {
			writeJSON(w, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// TokenHandler hands the bearer token to client side code that calls the booking
// API directly (GET /api/auth/token). It sits behind RequireSession.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := SnapshotFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Sign in required")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken":        snap.AccessToken,
			"accessTokenExpires": snap.AccessTokenExpiresAt,
		})
	}
}

// SignOutHandler destroys the session (POST /api/auth/signout)
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		if token := sessionToken(r); token != "" {
			if err := s.sessions.SignOut(r.Context(), token); err != nil {
				log.Err(err).Msg("Failed to delete session")
			}
		}
		s.clearSessionCookie(w, r)
		redirectSuccess(w, r, session.ResolveRedirect(utils.FirstNonEmpty(r.FormValue("callbackUrl"), RouteHome), s.baseURL))
	}
}
