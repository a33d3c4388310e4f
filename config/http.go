package config

import "time"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

// SessionConfig contains bearer session configuration.
type SessionConfig struct {
	// TTL is how long a session token stays valid without renewal.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
}

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	// StatsDEnabled toggles metric emission.
	StatsDEnabled bool `env:"STATSD_ENABLED" envDefault:"false"`

	// StatsDAddress is the UDP host:port of the StatsD endpoint.
	StatsDAddress string `env:"STATSD_ADDRESS" envDefault:"localhost:8125"`

	// StatsDPrefix is prepended to every metric name.
	StatsDPrefix string `env:"STATSD_PREFIX" envDefault:"leadsearch"`
}
