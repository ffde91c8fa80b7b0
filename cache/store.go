package cache

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fintrace/insider/errors"
	"github.com/fintrace/insider/resolve"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS identity_cache (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	ttl_class  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_identity_cache_expires ON identity_cache(expires_at);
`

// StoreStats summarizes the persisted cache contents.
type StoreStats struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Expired  int `json:"expired"`
}

// Store persists cache entries in a local sqlite database. Identities are
// stored as JSON payloads; the schema only indexes what eviction needs.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the cache database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create cache directory")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "open cache database")
	}

	store, err := NewStoreFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStoreFromDB wraps an already-open database, applying the schema.
func NewStoreFromDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(cacheSchema); err != nil {
		return nil, errors.Wrap(err, "apply cache schema")
	}
	return &Store{db: db}, nil
}

// Load fetches one entry. ok is false when the key is absent; expiry is the
// caller's to enforce, so a stale row is still returned with its expiry.
func (s *Store) Load(key string) (*resolve.ResolvedIdentity, time.Time, bool, error) {
	var payload string
	var expiresUnix int64
	err := s.db.QueryRow(
		`SELECT payload, expires_at FROM identity_cache WHERE key = ?`, key,
	).Scan(&payload, &expiresUnix)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, errors.Wrap(err, "load cache entry")
	}

	var identity resolve.ResolvedIdentity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		// A corrupt row is treated as absent rather than poisoning reads
		_ = s.Delete(key)
		return nil, time.Time{}, false, nil
	}

	return &identity, time.Unix(expiresUnix, 0), true, nil
}

// Save upserts one entry.
func (s *Store) Save(key string, identity *resolve.ResolvedIdentity, ttlClass string, createdAt, expiresAt time.Time) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return errors.Wrap(err, "encode cache entry")
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO identity_cache (key, payload, ttl_class, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key, string(payload), ttlClass, createdAt.Unix(), expiresAt.Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "save cache entry")
	}
	return nil
}

// Delete removes one entry.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM identity_cache WHERE key = ?`, key)
	if err != nil {
		return errors.Wrap(err, "delete cache entry")
	}
	return nil
}

// Prune removes entries already expired at now.
func (s *Store) Prune(now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM identity_cache WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, errors.Wrap(err, "prune cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM identity_cache`)
	if err != nil {
		return errors.Wrap(err, "clear cache")
	}
	return nil
}

// Stats counts the persisted entries by class and expiry.
func (s *Store) Stats(now time.Time) (StoreStats, error) {
	var stats StoreStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN ttl_class = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN ttl_class = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM identity_cache`,
		ClassPositive, ClassNegative, now.Unix(),
	).Scan(&stats.Total, &stats.Positive, &stats.Negative, &stats.Expired)
	if err != nil {
		return StoreStats{}, errors.Wrap(err, "cache stats")
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
