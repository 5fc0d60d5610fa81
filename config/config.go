package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppConfig is the main configuration struct composing domain-specific
// sections from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual files for the
// available variables:
//   - api.go: backend endpoint configuration
//   - auth.go: authentication mode configuration
//   - storage.go: persisted key-value storage configuration
//   - observability.go: metrics configuration
type AppConfig struct {
	// IsDev controls development-mode behavior. Set DEV=true for dev mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Backend API configuration
	API APIConfig `envPrefix:"API_"`

	// Authentication configuration
	Auth AuthConfig `envPrefix:"AUTH_"`

	// Persisted storage configuration
	Storage StorageConfig `envPrefix:"STORAGE_"`

	// Observability configuration
	Observability ObservabilityConfig `envPrefix:"STATSD_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// Call after loading from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Storage.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks NODE_ENV as a fallback (common in frontend tooling
// that hosts the portal build).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// defaultStateFile returns the default location of the file-backed store.
func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "portal-state.json")
	}
	return filepath.Join(dir, "escolaweb", "portal-state.json")
}
