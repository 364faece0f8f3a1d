package db

import (
	"log"
	"sync"
	"time"

	"char-appraiser/internal/engine"

	"golang.org/x/sync/singleflight"
)

// CorpusCache is a TTL-bounded in-memory snapshot of the sold-listing
// corpus. The engine itself always computes against a fresh snapshot; this
// cache is the caller-side layer that keeps concurrent appraisal requests
// from hammering SQLite with identical bulk reads. A singleflight.Group
// coalesces concurrent refreshes into one query.
type CorpusCache struct {
	db  *DB
	ttl time.Duration

	mu        sync.RWMutex
	snapshot  []engine.SoldListing
	fetchedAt time.Time

	group singleflight.Group
}

// NewCorpusCache creates a corpus cache over the given database.
// A non-positive TTL disables caching: every Snapshot call hits SQLite.
func NewCorpusCache(database *DB, ttl time.Duration) *CorpusCache {
	return &CorpusCache{db: database, ttl: ttl}
}

// Snapshot returns the sold-listing corpus, refreshing it when the cached
// copy is stale. The returned slice is shared: callers must treat it as
// immutable.
func (c *CorpusCache) Snapshot() ([]engine.SoldListing, error) {
	if c.ttl <= 0 {
		return c.db.SoldCorpus()
	}

	c.mu.RLock()
	snapshot, fetchedAt := c.snapshot, c.fetchedAt
	c.mu.RUnlock()
	if snapshot != nil && time.Since(fetchedAt) < c.ttl {
		return snapshot, nil
	}

	result, err, _ := c.group.Do("corpus", func() (interface{}, error) {
		// Re-check under the flight: another caller may have refreshed
		// while this one was queued.
		c.mu.RLock()
		snapshot, fetchedAt := c.snapshot, c.fetchedAt
		c.mu.RUnlock()
		if snapshot != nil && time.Since(fetchedAt) < c.ttl {
			return snapshot, nil
		}

		fresh, err := c.db.SoldCorpus()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.snapshot = fresh
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		log.Printf("[DB] CorpusCache refreshed (%d sold listings)", len(fresh))
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]engine.SoldListing), nil
}

// Invalidate drops the cached snapshot so the next Snapshot call reloads.
// Called after new sales are recorded.
func (c *CorpusCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
