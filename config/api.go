package config

import (
	"strings"
	"time"
)

// APIConfig describes the school-administration REST backend.
type APIConfig struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Timeout bounds every backend round trip.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Sanitize normalizes the endpoint configuration.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}
