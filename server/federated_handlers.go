package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-cinema-auth/flowstate"
	"github.com/jrsteele09/go-cinema-auth/internal/utils"
	"github.com/jrsteele09/go-cinema-auth/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// GoogleSignInHandler starts the authorization code flow (GET /api/auth/signin/google)
func (s *Server) GoogleSignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()
		nonce := generateRandomString(32)
		verifier := oauth2.GenerateVerifier()

		err := s.flows.Upsert(state, &flowstate.FlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    session.ResolveRedirect(utils.FirstNonEmpty(r.URL.Query().Get("callbackUrl"), RouteHome), s.baseURL),
			CreatedAt:    time.Now(),
		})
		if err != nil {
			log.Err(err).Msg("Failed to store federated flow state")
			redirectSuccess(w, r, s.loginErrorURL(ErrorOAuthCallback))
			return
		}

		http.Redirect(w, r, s.google.AuthCodeURL(state, nonce, verifier), http.StatusFound)
	}
}

// GoogleCallbackHandler finishes the flow (GET /api/auth/callback/google): the verified
// ID token is exchanged with the booking API, and any rejection aborts the sign-in.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errorParam := r.FormValue("error"); errorParam != "" {
			log.Warn().Str("error", errorParam).Str("error_description", r.FormValue("error_description")).Msg("Google authorization failed")
			redirectSuccess(w, r, s.loginErrorURL(ErrorOAuthCallback))
			return
		}

		state := r.FormValue("state")
		code := r.FormValue("code")
		if code == "" || state == "" {
			redirectSuccess(w, r, s.loginErrorURL(ErrorOAuthCallback))
			return
		}

		flow, err := s.flows.Consume(state)
		if err != nil {
			log.Err(err).Msg("Google callback with unknown state")
			redirectSuccess(w, r, s.loginErrorURL(ErrorOAuthCallback))
			return
		}

		assertion, err := s.google.Exchange(r.Context(), code, flow.CodeVerifier, flow.Nonce)
		if err != nil {
			log.Err(err).Msg("Google token exchange failed")
			redirectSuccess(w, r, s.loginErrorURL(ErrorOAuthCallback))
			return
		}

		token, _, err := s.sessions.SignInWithFederatedAssertion(r.Context(), sessionToken(r), assertion)
		if err != nil {
			log.Err(err).Str("provider", s.google.ID()).Msg("Google signIn error")
			redirectSuccess(w, r, s.loginErrorURL(ErrorAccessDenied))
			return
		}

		s.setSessionCookie(w, r, token, s.sessions.CookieMaxAge())
		redirectSuccess(w, r, session.ResolveRedirect(flow.ReturnURL, s.baseURL))
	}
}
