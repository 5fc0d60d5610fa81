package devauth

// Package devauth provides a simple, config-driven AuthAPI for local
// development. It short-circuits the network entirely and serves a fixed
// identity.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"

	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
	apperrors "github.com/escolaweb/portal-core/internal/errors"
	"github.com/escolaweb/portal-core/internal/ports"
)

// Config controls the dev identity. Role defaults to management when empty.
type Config struct {
	Username   string
	Name       string
	Role       domainsession.Role
	SchoolName string
}

// Provider implements ports.AuthAPI for local development. Login accepts any
// non-empty secret for the configured username and issues random opaque
// tokens; the profile fetch returns the configured identity for whichever
// token was issued last.
type Provider struct {
	mu      sync.Mutex
	profile domainsession.UserProfile
	token   string
}

var _ ports.AuthAPI = (*Provider)(nil)

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Username == "" {
		return nil, errors.New("devauth: Username is required")
	}
	role := cfg.Role
	if role == "" {
		role = domainsession.RoleManagement
	}
	if !role.Valid() {
		return nil, errors.New("devauth: invalid role " + string(role))
	}
	name := cfg.Name
	if name == "" {
		name = cfg.Username
	}
	return &Provider{
		profile: domainsession.UserProfile{
			ID:         "dev-" + cfg.Username,
			Name:       name,
			Username:   cfg.Username,
			Role:       role,
			SchoolName: cfg.SchoolName,
		},
	}, nil
}

func (p *Provider) Login(_ context.Context, creds ports.Credentials) (ports.TokenPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if creds.Identifier != p.profile.Username || creds.Secret == "" {
		return ports.TokenPair{}, apperrors.Unauthorized("invalid credentials")
	}

	access, err := randomToken()
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := randomToken()
	if err != nil {
		return ports.TokenPair{}, err
	}
	p.token = access
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (p *Provider) FetchCurrentUser(_ context.Context, accessToken string) (domainsession.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Accept the last issued token, or any token before the first login so a
	// persisted dev session survives restarts.
	if p.token != "" && accessToken != p.token {
		return domainsession.UserProfile{}, apperrors.Unauthorized("unknown token")
	}
	if accessToken == "" {
		return domainsession.UserProfile{}, apperrors.Unauthorized("missing token")
	}
	return p.profile, nil
}

func (p *Provider) ToggleServerDarkMode(_ context.Context, accessToken string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && accessToken != p.token {
		return false, apperrors.Unauthorized("unknown token")
	}
	p.profile.DarkMode = !p.profile.DarkMode
	return p.profile.DarkMode, nil
}

func randomToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "generate token")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
