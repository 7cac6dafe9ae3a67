// Package upstream talks to the identity provider that actually
// authenticates the end user. The bridge only ever needs two things from
// it: an authorization URL to redirect the browser to, and a verified
// identity once the browser comes back with a code.
package upstream

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/mcpbridge/consent-bridge/internal/config"
	apperrors "github.com/mcpbridge/consent-bridge/internal/errors"
)

// Identity is the subset of upstream ID-token claims the bridge uses.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Provider abstracts the upstream identity provider so handlers can be
// tested without a live issuer.
type Provider interface {
	// AuthCodeURL builds the upstream authorization URL. state is the
	// bridge's own state token, nonce binds the eventual ID token to this
	// flow, and codeChallenge is the PKCE S256 challenge.
	AuthCodeURL(state, nonce, codeChallenge string) string

	// Authenticate exchanges the authorization code, verifies the ID
	// token and its nonce, and returns the authenticated identity. No
	// retries: a failed call terminates the flow.
	Authenticate(ctx context.Context, code, codeVerifier, nonce string) (Identity, error)
}

// OIDCProvider implements Provider against a discovered OIDC issuer.
type OIDCProvider struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

var _ Provider = (*OIDCProvider)(nil)

// NewOIDCProvider runs OIDC discovery against the configured issuer and
// builds the oauth2 exchange configuration. redirectURL is the bridge's
// own /callback endpoint.
func NewOIDCProvider(ctx context.Context, cfg config.UpstreamConfig, redirectURL string) (*OIDCProvider, error) {
	issuer := cfg.GetUpstreamIssuer()
	if issuer == "" {
		return nil, fmt.Errorf("[upstream NewOIDCProvider] UPSTREAM_ISSUER is required")
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[upstream NewOIDCProvider] failed to create OIDC provider")
	}

	clientID := cfg.GetUpstreamClientID()
	return &OIDCProvider{
		provider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: cfg.GetUpstreamClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       cfg.GetUpstreamScopes(),
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state, nonce, codeChallenge string) string {
	return p.oauth2Config.AuthCodeURL(
		state,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *OIDCProvider) Authenticate(ctx context.Context, code, codeVerifier, nonce string) (Identity, error) {
	oauth2Token, err := p.oauth2Config.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return Identity{}, apperrors.Wrapf(apperrors.ErrUpstreamExchange, "[OIDCProvider Authenticate] %v", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return Identity{}, apperrors.ErrInvalidIDToken
	}

	// Verify the ID token signature and claims (including issuer/audience)
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Identity{}, apperrors.Wrapf(apperrors.ErrInvalidIDToken, "[OIDCProvider Authenticate] %v", err)
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, apperrors.Wrapf(apperrors.ErrInvalidIDToken, "[OIDCProvider Authenticate] %v", err)
	}

	// Validate nonce to prevent replay attacks
	if claims.Nonce != nonce {
		return Identity{}, apperrors.ErrInvalidNonce
	}

	return Identity{
		Subject: claims.Sub,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}
