package cache

import (
	"sync/atomic"
	"time"

	"salaryscope/internal/config"
	"salaryscope/internal/errors"
	"salaryscope/internal/types"
)

// EntryVersion is stamped into cache metadata; bump it when the
// analysis shape changes so stale-format entries read as misses.
const EntryVersion = "1"

// Stats is a point-in-time snapshot of cache behavior
type Stats struct {
	MemoryEntries int   `json:"memoryEntries"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	StaleHits     int64 `json:"staleHits"`
	Evictions     int64 `json:"evictions"`
	Invalidations int64 `json:"invalidations"`
	Persistent    bool  `json:"persistent"`
}

// AnalysisCache memoizes compensation analyses across two tiers: an
// in-process map checked first, and an optional persistent BadgerDB
// store behind it. All methods are safe for concurrent use.
type AnalysisCache struct {
	memory     *memoryStore
	persistent *badgerStore
	ttl        time.Duration
	logger     *errors.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	staleHits     atomic.Int64
	evictions     atomic.Int64
	invalidations atomic.Int64
}

// New creates the cache from configuration. The persistent tier is
// optional; without it the cache is purely in-process.
func New(cfg config.CacheConfig, logger *errors.Logger) (*AnalysisCache, error) {
	c := &AnalysisCache{
		memory: newMemoryStore(cfg.MaxMemoryEntries),
		ttl:    cfg.TTL,
		logger: logger,
	}
	if c.ttl <= 0 {
		c.ttl = 24 * time.Hour
	}

	if cfg.Persistent.Enabled {
		store, err := newBadgerStore(cfg.Persistent, logger)
		if err != nil {
			return nil, err
		}
		c.persistent = store
		logger.Info("Persistent cache tier enabled", "path", cfg.Persistent.Path)
	}

	return c, nil
}

// Key derives the fingerprint for a request
func (c *AnalysisCache) Key(params KeyParams) string {
	return Fingerprint(params)
}

// DefaultTTL returns the TTL applied by Set
func (c *AnalysisCache) DefaultTTL() time.Duration {
	return c.ttl
}

// Get looks up a fresh entry. Stale hits and corrupt stored blobs are
// both misses; a persistent-tier hit is promoted into the memory tier.
func (c *AnalysisCache) Get(key string) (types.CacheEntry, bool) {
	now := time.Now()

	if entry, ok := c.memory.get(key); ok {
		if entry.Stale(now) {
			c.staleHits.Add(1)
			c.misses.Add(1)
			return types.CacheEntry{}, false
		}
		c.hits.Add(1)
		return entry, true
	}

	if c.persistent != nil {
		if entry, ok := c.persistent.get(key); ok {
			if entry.Metadata.Version != EntryVersion || entry.Stale(now) {
				c.staleHits.Add(1)
				c.misses.Add(1)
				return types.CacheEntry{}, false
			}
			evicted := c.memory.set(entry)
			c.evictions.Add(int64(evicted))
			c.hits.Add(1)
			return entry, true
		}
	}

	c.misses.Add(1)
	return types.CacheEntry{}, false
}

// Set stores an analysis in both tiers under the cache's default TTL
func (c *AnalysisCache) Set(key string, data types.CompensationAnalysis, metadata types.CacheMetadata) types.CacheEntry {
	metadata.Version = EntryVersion
	entry := types.CacheEntry{
		Key:       key,
		Data:      data,
		Timestamp: time.Now(),
		TTL:       c.ttl,
		Metadata:  metadata,
	}

	evicted := c.memory.set(entry)
	if evicted > 0 {
		c.evictions.Add(int64(evicted))
		c.logger.Debug("Memory cache evicted oldest entries", "count", evicted)
	}

	if c.persistent != nil {
		if err := c.persistent.set(entry); err != nil {
			// The memory tier already holds the entry; losing the
			// persistent copy only costs durability.
			c.logger.Warn("Persistent cache write failed", "key", key, "error", err.Error())
		} else if pruned := c.persistent.pruneToBound(); pruned > 0 {
			c.evictions.Add(int64(pruned))
			c.logger.Debug("Persistent cache pruned oldest entries", "count", pruned)
		}
	}

	return entry
}

// Invalidate removes entries matching the pattern from both tiers and
// returns the number removed from the memory tier.
func (c *AnalysisCache) Invalidate(pattern InvalidationPattern) int {
	removed := c.memory.invalidateMatching(pattern)
	if c.persistent != nil {
		c.persistent.invalidateMatching(pattern)
	}
	c.invalidations.Add(int64(removed))
	c.logger.Info("Cache entries invalidated",
		"removed", removed,
		"job_id", pattern.JobID,
		"user_id", pattern.UserID,
		"location", pattern.LocationSubstring)
	return removed
}

// Clear empties both tiers
func (c *AnalysisCache) Clear() int {
	removed := c.memory.clear()
	if c.persistent != nil {
		c.persistent.clear()
	}
	c.invalidations.Add(int64(removed))
	c.logger.Info("Cache cleared", "removed", removed)
	return removed
}

// Stats returns a snapshot of cache counters
func (c *AnalysisCache) Stats() Stats {
	return Stats{
		MemoryEntries: c.memory.len(),
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		StaleHits:     c.staleHits.Load(),
		Evictions:     c.evictions.Load(),
		Invalidations: c.invalidations.Load(),
		Persistent:    c.persistent != nil,
	}
}

// Close releases the persistent tier, if any
func (c *AnalysisCache) Close() error {
	if c.persistent != nil {
		return c.persistent.close()
	}
	return nil
}
