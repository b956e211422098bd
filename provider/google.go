package provider

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-cinema-auth/internal/errors"
	"github.com/jrsteele09/go-cinema-auth/session"
	"golang.org/x/oauth2"
)

const GoogleID = "google"

// Google runs the authorization code flow against Google (or any OIDC issuer)
// and turns the verified ID token into a federated assertion.
type Google struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewGoogle discovers the issuer's endpoints. redirectURL is the callback route on
// the storefront.
func NewGoogle(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*Google, error) {
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return &Google{
		oauth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     p.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: p.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (g *Google) ID() string {
	return GoogleID
}

// AuthCodeURL builds the redirect to the identity provider with nonce and PKCE challenge.
func (g *Google) AuthCodeURL(state, nonce, codeVerifier string) string {
	return g.oauth2Config.AuthCodeURL(state, oidc.Nonce(nonce), oauth2.S256ChallengeOption(codeVerifier))
}

// Exchange redeems code, verifies the returned ID token and its nonce, and returns
// the raw token with the identity the provider asserted.
func (g *Google) Exchange(ctx context.Context, code, codeVerifier, nonce string) (session.FederatedAssertion, error) {
	token, err := g.oauth2Config.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return session.FederatedAssertion{}, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return session.FederatedAssertion{}, fmt.Errorf("%w: no id_token in token response", apperrors.ErrInvalidToken)
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return session.FederatedAssertion{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return session.FederatedAssertion{}, fmt.Errorf("failed to extract claims: %w", err)
	}
	if claims.Nonce != nonce {
		return session.FederatedAssertion{}, apperrors.ErrInvalidNonce
	}

	return session.FederatedAssertion{
		IDToken: rawIDToken,
		Identity: session.Identity{
			ID:    claims.Sub,
			Email: claims.Email,
			Name:  claims.Name,
		},
	}, nil
}
