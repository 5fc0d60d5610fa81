package oauthapi

// Package oauthapi implements the login half of ports.AuthAPI against an
// OAuth2 token endpoint using the resource-owner password grant, for
// deployments where the school backend is fronted by an identity provider.
// Profile and theme operations are delegated to the REST adapter.

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	apperrors "github.com/escolaweb/portal-core/internal/errors"
	"github.com/escolaweb/portal-core/internal/ports"
)

// Config holds configuration for the password-grant provider.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
	HTTPClient   *http.Client // optional
}

// Provider implements ports.AuthAPI. Login goes through the token endpoint;
// everything else is delegated to the wrapped REST API.
type Provider struct {
	config     *oauth2.Config
	rest       ports.AuthAPI
	httpClient *http.Client
}

var _ ports.AuthAPI = (*Provider)(nil)

// NewProvider constructs a Provider delegating non-login calls to rest.
func NewProvider(cfg Config, rest ports.AuthAPI) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("oauthapi: client ID is required")
	}
	if cfg.TokenURL == "" {
		return nil, errors.New("oauthapi: token URL is required")
	}
	if rest == nil {
		return nil, errors.New("oauthapi: REST delegate is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		},
		rest:       rest,
		httpClient: httpClient,
	}, nil
}

// Login performs the password grant and returns the issued token pair.
func (p *Provider) Login(ctx context.Context, creds ports.Credentials) (ports.TokenPair, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.PasswordCredentialsToken(ctx, creds.Identifier, creds.Secret)
	if err != nil {
		return ports.TokenPair{}, mapOAuthError(err)
	}
	return ports.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// FetchCurrentUser delegates to the REST adapter.
func (p *Provider) FetchCurrentUser(ctx context.Context, accessToken string) (domainsession.UserProfile, error) {
	return p.rest.FetchCurrentUser(ctx, accessToken)
}

// ToggleServerDarkMode delegates to the REST adapter.
func (p *Provider) ToggleServerDarkMode(ctx context.Context, accessToken string) (bool, error) {
	return p.rest.ToggleServerDarkMode(ctx, accessToken)
}

// mapOAuthError normalizes token-endpoint failures into the application
// taxonomy, surfacing the provider's error description when present.
func mapOAuthError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		msg := strings.TrimSpace(rerr.ErrorDescription)
		if msg == "" {
			msg = "invalid credentials"
		}
		if rerr.Response != nil && rerr.Response.StatusCode >= 500 {
			return apperrors.Wrap(err, apperrors.ErrCodeTransient, msg)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, msg)
	}
	return apperrors.Wrap(err, apperrors.ErrCodeTransient, "identity provider unreachable")
}
