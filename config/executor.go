package config

import "time"

// ExecutorConfig contains external lead-search executor configuration.
type ExecutorConfig struct {
	// BaseURL is the executor API root.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.apify.com/v2"`

	// ActorID identifies the lead-search actor to run.
	ActorID string `env:"ACTOR_ID"`

	// DefaultToken is the process-wide API token used when a user has not
	// stored their own.
	DefaultToken string `env:"DEFAULT_TOKEN"`

	// RequestTimeout bounds individual executor API calls.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// RunTimeout is the wall-clock ceiling for a run; runs in flight longer
	// than this are failed on the next refresh.
	RunTimeout time.Duration `env:"RUN_TIMEOUT" envDefault:"30m"`

	// PollCacheTTL is how long run-status responses are reused across
	// closely spaced refreshes.
	PollCacheTTL time.Duration `env:"POLL_CACHE_TTL" envDefault:"5s"`
}

// Sanitize applies guardrails to executor configuration values.
func (e *ExecutorConfig) Sanitize() {
	if e.RequestTimeout <= 0 {
		e.RequestTimeout = 30 * time.Second
	}
	if e.RunTimeout <= 0 {
		e.RunTimeout = 30 * time.Minute
	}
	if e.PollCacheTTL <= 0 {
		e.PollCacheTTL = 5 * time.Second
	}
}

// PollerConfig contains background poll loop configuration.
type PollerConfig struct {
	// Enabled toggles the background poller.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Interval is how often in-flight searches are swept.
	Interval time.Duration `env:"INTERVAL" envDefault:"15s"`

	// BatchSize caps how many searches one sweep picks up.
	BatchSize int `env:"BATCH_SIZE" envDefault:"100"`

	// Concurrency caps parallel refreshes within a sweep.
	Concurrency int `env:"CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to poller configuration values.
func (p *PollerConfig) Sanitize() {
	if p.Interval <= 0 {
		p.Interval = 15 * time.Second
	}
	if p.BatchSize <= 0 {
		p.BatchSize = 100
	}
	if p.Concurrency <= 0 {
		p.Concurrency = 4
	}
}
