package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// EDGAR host defaults
	v.SetDefault("edgar.base_url", "https://www.sec.gov")
	v.SetDefault("edgar.full_text_url", "https://efts.sec.gov/LATEST/search-index")
	v.SetDefault("edgar.timeout_seconds", 30)
	v.SetDefault("edgar.max_retries", 3)

	// Resolver defaults
	v.SetDefault("resolver.fallback_on_empty", true) // index lag makes empty results inconclusive
	v.SetDefault("resolver.concurrency", 8)
	v.SetDefault("resolver.entity_limit", 0) // 0 = full universe
	v.SetDefault("resolver.deadline_seconds", 60)
	v.SetDefault("resolver.current_window_days", 365)
	v.SetDefault("resolver.former_window_days", 730)
	v.SetDefault("resolver.lookback_years", 10)

	// Rate limit defaults match the SEC's published 10 requests/second ceiling
	v.SetDefault("ratelimit.requests_per_second", 10.0)
	v.SetDefault("ratelimit.burst", 10)

	// Cache defaults
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("cache.positive_ttl_minutes", 240)
	v.SetDefault("cache.negative_ttl_minutes", 30)
}

func defaultCachePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "insider-cache.db"
	}
	return filepath.Join(homeDir, ".insider", "cache.db")
}
