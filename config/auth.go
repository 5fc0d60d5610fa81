package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication backend for the portal client.
type AuthMode string

const (
	// AuthModeRest logs in against the backend's own JSON endpoints.
	AuthModeRest AuthMode = "rest"
	// AuthModeOAuth logs in via an identity provider's password grant.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeOffline serves a fixed local identity (development only).
	AuthModeOffline AuthMode = "offline"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "rest", "oauth", "offline":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: rest, oauth, offline)", v)
	}
}

// OAuthConfig contains password-grant configuration (used when Mode=oauth).
type OAuthConfig struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	TokenURL     string   `env:"TOKEN_URL"`
	Scopes       []string `env:"SCOPES" envDefault:"portal" envSeparator:";"`
}

// OfflineConfig controls the fixed development identity (Mode=offline).
type OfflineConfig struct {
	Username   string `env:"USERNAME" envDefault:"dev.user"`
	Name       string `env:"NAME"     envDefault:"Dev User"`
	Role       string `env:"ROLE"     envDefault:"management"`
	SchoolName string `env:"SCHOOL"   envDefault:"Escola Modelo"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which login adapter to use.
	Mode AuthMode `env:"MODE" envDefault:"rest"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// Offline configuration (used when Mode=offline).
	Offline OfflineConfig `envPrefix:"OFFLINE_"`

	// LoginAttemptsPerMinute caps client-side sign-in attempts.
	// Zero disables the throttle.
	LoginAttemptsPerMinute int `env:"LOGIN_ATTEMPTS_PER_MINUTE" envDefault:"10"`
}

// Sanitize applies guardrails to the auth configuration.
func (c *AuthConfig) Sanitize() {
	if c.LoginAttemptsPerMinute < 0 {
		c.LoginAttemptsPerMinute = 0
	}
}
