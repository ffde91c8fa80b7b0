// Package cache holds resolved identities for their TTL so repeated queries
// for the same person do not repeat the upstream work. Results that found
// nothing are cached too, on a shorter TTL; "not found" is usually still
// "not found" a few minutes later, but new filings arrive daily.
package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fintrace/insider/resolve"
)

// TTL classes, recorded alongside persisted entries.
const (
	ClassPositive = "positive"
	ClassNegative = "negative"
)

type entry struct {
	identity  *resolve.ResolvedIdentity
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Cache is an in-memory TTL cache keyed by canonical query string, with an
// optional sqlite store written through on every Put so entries survive
// restarts. Expiry is lazy: entries are evicted when a Get finds them stale.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	positiveTTL time.Duration
	negativeTTL time.Duration

	store   *Store // may be nil
	timeNow func() time.Time
	log     *zap.SugaredLogger

	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache with real time. store may be nil for memory-only use.
func New(positiveTTL, negativeTTL time.Duration, store *Store, log *zap.SugaredLogger) *Cache {
	return NewWithClock(positiveTTL, negativeTTL, store, log, time.Now)
}

// NewWithClock creates a cache with an injectable clock (for testing)
func NewWithClock(positiveTTL, negativeTTL time.Duration, store *Store, log *zap.SugaredLogger, timeNow func() time.Time) *Cache {
	if positiveTTL <= 0 {
		positiveTTL = 4 * time.Hour
	}
	if negativeTTL <= 0 {
		negativeTTL = 30 * time.Minute
	}
	return &Cache{
		entries:     make(map[string]entry),
		positiveTTL: positiveTTL,
		negativeTTL: negativeTTL,
		store:       store,
		timeNow:     timeNow,
		log:         log,
	}
}

// Get returns the cached identity for key, consulting the persistent store
// on a memory miss. Expired entries are evicted, never returned.
func (c *Cache) Get(key string) (*resolve.ResolvedIdentity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.timeNow()

	if e, ok := c.entries[key]; ok {
		if now.Before(e.expiresAt) {
			c.hits++
			return e.identity, true
		}
		delete(c.entries, key)
		c.evictions++
	}

	if c.store != nil {
		identity, expiresAt, ok, err := c.store.Load(key)
		switch {
		case err != nil:
			c.log.Warnw("Cache store read failed", "key", key, "error", err)
		case ok && now.Before(expiresAt):
			c.entries[key] = entry{identity: identity, expiresAt: expiresAt}
			c.hits++
			return identity, true
		case ok:
			// Stale persisted row: a miss, and the row goes with it
			if err := c.store.Delete(key); err != nil {
				c.log.Warnw("Cache store delete failed", "key", key, "error", err)
			}
			c.evictions++
		}
	}

	c.misses++
	return nil, false
}

// Put stores an identity under key. The TTL class follows whether the
// resolution found anything. Store write failures degrade to memory-only.
func (c *Cache) Put(key string, identity *resolve.ResolvedIdentity) {
	if identity == nil {
		return
	}

	ttl, class := c.positiveTTL, ClassPositive
	if !identity.Found() {
		ttl, class = c.negativeTTL, ClassNegative
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.timeNow()
	expiresAt := now.Add(ttl)
	c.entries[key] = entry{identity: identity, expiresAt: expiresAt}

	if c.store != nil {
		if err := c.store.Save(key, identity, class, now, expiresAt); err != nil {
			c.log.Warnw("Cache store write failed", "key", key, "error", err)
		}
	}
}

// Clear drops every entry, in memory and in the store.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
	if c.store != nil {
		return c.store.Clear()
	}
	return nil
}

// Stats reports the in-memory counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
