package commands

import (
	"time"

	"github.com/fintrace/insider/budget"
	"github.com/fintrace/insider/cache"
	"github.com/fintrace/insider/config"
	"github.com/fintrace/insider/edgar"
	"github.com/fintrace/insider/logger"
	"github.com/fintrace/insider/resolve"
)

// buildStack wires the full resolution pipeline from configuration. The
// returned cache is also handed back so cache commands can reach it.
func buildStack() (*resolve.Resolver, *cache.Cache, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	b := budget.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	client := edgar.NewClient(cfg.Edgar, cfg.Resolver.LookbackYears, logger.Logger)

	identityCache := openCache(cfg)

	indexed := resolve.NewIndexedStrategy(client, b, cfg.Resolver.MatchThreshold, logger.Logger)
	exhaustive := resolve.NewExhaustiveStrategy(client, client, b,
		cfg.Resolver.Concurrency, cfg.Resolver.MatchThreshold, logger.Logger)

	resolver := resolve.NewResolver(indexed, exhaustive, identityCache,
		time.Duration(cfg.Resolver.CurrentWindowDays)*24*time.Hour,
		time.Duration(cfg.Resolver.FormerWindowDays)*24*time.Hour,
		logger.Logger)

	return resolver, identityCache, nil
}

// openCache builds the identity cache, degrading to memory-only when the
// persistent store cannot be opened.
func openCache(cfg *config.Config) *cache.Cache {
	var store *cache.Store
	if cfg.Cache.Path != "" {
		var err error
		store, err = cache.OpenStore(cfg.Cache.Path)
		if err != nil {
			logger.Warnw("Cache store unavailable, continuing in memory",
				"path", cfg.Cache.Path, "error", err)
			store = nil
		}
	}
	return cache.New(
		time.Duration(cfg.Cache.PositiveTTLMinutes)*time.Minute,
		time.Duration(cfg.Cache.NegativeTTLMinutes)*time.Minute,
		store, logger.Logger)
}

// configuredOptions derives per-call resolution options from configuration.
func configuredOptions(cfg *config.Config) resolve.Options {
	opts := resolve.DefaultOptions()
	opts.FallbackOnEmpty = cfg.Resolver.FallbackOnEmpty
	opts.EntityLimit = cfg.Resolver.EntityLimit
	if cfg.Resolver.DeadlineSeconds > 0 {
		opts.Deadline = time.Duration(cfg.Resolver.DeadlineSeconds) * time.Second
	}
	return opts
}
