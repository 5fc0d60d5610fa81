package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects where persisted client state lives.
type StorageBackend string

const (
	// StorageMemory keeps state in-process only (tests, ephemeral hosts).
	StorageMemory StorageBackend = "memory"
	// StorageFile persists state to a JSON file on the device.
	StorageFile StorageBackend = "file"
	// StorageRedis persists state in Redis (shared-device deployments).
	StorageRedis StorageBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (s *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "memory", "file", "redis":
		*s = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: memory, file, redis)", v)
	}
}

// RedisConfig describes the Redis connection (Backend=redis).
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"portal:"`
}

// StorageConfig groups persisted key-value storage configuration.
type StorageConfig struct {
	// Backend selects the KeyValue adapter.
	Backend StorageBackend `env:"BACKEND" envDefault:"file"`

	// FilePath locates the JSON store (Backend=file). Defaults to a file
	// under the user configuration directory.
	FilePath string `env:"FILE_PATH"`

	// Redis connection (Backend=redis).
	Redis RedisConfig `envPrefix:"REDIS_"`
}

// Sanitize fills in the default state-file location.
func (c *StorageConfig) Sanitize() {
	if c.FilePath == "" {
		c.FilePath = defaultStateFile()
	}
}
