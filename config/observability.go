package config

// ObservabilityConfig describes the optional StatsD sink for client metrics.
type ObservabilityConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Address string `env:"ADDRESS"`
	Prefix  string `env:"PREFIX" envDefault:"portal"`
}
