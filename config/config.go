package config

import "fmt"

// Config represents the core insider configuration
type Config struct {
	Edgar     EdgarConfig     `mapstructure:"edgar"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// EdgarConfig configures access to the SEC EDGAR hosts
type EdgarConfig struct {
	// UserAgent is mandatory; the SEC rejects requests without a
	// descriptive User-Agent ("Name contact@example.com").
	UserAgent      string `mapstructure:"user_agent"`
	BaseURL        string `mapstructure:"base_url"`        // www.sec.gov
	FullTextURL    string `mapstructure:"full_text_url"`   // efts.sec.gov full-text search
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // per-request timeout
	MaxRetries     int    `mapstructure:"max_retries"`     // retries on 429/5xx
}

// ResolverConfig configures identity resolution behavior
type ResolverConfig struct {
	MatchThreshold    float64 `mapstructure:"match_threshold"`     // 0 = use resolve.MatchThreshold
	FallbackOnEmpty   bool    `mapstructure:"fallback_on_empty"`   // run exhaustive scan when indexed search finds nothing
	Concurrency       int     `mapstructure:"concurrency"`         // exhaustive scan workers
	EntityLimit       int     `mapstructure:"entity_limit"`        // 0 = full universe
	DeadlineSeconds   int     `mapstructure:"deadline_seconds"`    // overall resolution deadline
	CurrentWindowDays int     `mapstructure:"current_window_days"` // evidence newer than this = current position
	FormerWindowDays  int     `mapstructure:"former_window_days"`  // evidence older than this = former position
	LookbackYears     int     `mapstructure:"lookback_years"`      // how far back filings are considered
}

// RateLimitConfig configures the shared outbound request budget
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // SEC publishes a 10 req/s ceiling
	Burst             int     `mapstructure:"burst"`
}

// CacheConfig configures the resolved-identity cache
type CacheConfig struct {
	Path               string `mapstructure:"path"`                 // SQLite file; empty = in-memory only
	PositiveTTLMinutes int    `mapstructure:"positive_ttl_minutes"` // resolved identities
	NegativeTTLMinutes int    `mapstructure:"negative_ttl_minutes"` // not-found markers expire sooner
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Edgar: {BaseURL: %s}, Resolver: {Concurrency: %d}, RateLimit: {RPS: %.1f}}",
		c.Edgar.BaseURL, c.Resolver.Concurrency, c.RateLimit.RequestsPerSecond)
}
