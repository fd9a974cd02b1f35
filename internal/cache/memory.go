package cache

import (
	"sort"
	"strings"
	"sync"

	"salaryscope/internal/types"
)

// memoryStore is the in-process cache tier: a mutex-guarded map with
// recency-based eviction. Entries are evicted by write time when the
// store exceeds its bound, not promoted on access.
type memoryStore struct {
	mu         sync.RWMutex
	entries    map[string]types.CacheEntry
	maxEntries int
}

func newMemoryStore(maxEntries int) *memoryStore {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &memoryStore{
		entries:    make(map[string]types.CacheEntry),
		maxEntries: maxEntries,
	}
}

func (m *memoryStore) get(key string) (types.CacheEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	return entry, ok
}

// set writes an entry and returns how many entries were evicted to
// stay within the size bound.
func (m *memoryStore) set(entry types.CacheEntry) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Key] = entry
	if len(m.entries) <= m.maxEntries {
		return 0
	}
	return m.evictOldestLocked(len(m.entries) - m.maxEntries)
}

// evictOldestLocked removes the n entries with the oldest write
// timestamps. Caller holds the write lock.
func (m *memoryStore) evictOldestLocked(n int) int {
	type aged struct {
		key string
		at  int64
	}
	all := make([]aged, 0, len(m.entries))
	for key, entry := range m.entries {
		all = append(all, aged{key: key, at: entry.Timestamp.UnixNano()})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })

	if n > len(all) {
		n = len(all)
	}
	for i := 0; i < n; i++ {
		delete(m.entries, all[i].key)
	}
	return n
}

func (m *memoryStore) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *memoryStore) clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	m.entries = make(map[string]types.CacheEntry)
	return n
}

// invalidateMatching removes entries whose metadata matches the
// pattern and returns how many were removed.
func (m *memoryStore) invalidateMatching(pattern InvalidationPattern) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if pattern.matches(entry.Metadata) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidationPattern selects cache entries for removal. Zero-valued
// fields do not constrain the match; a fully zero pattern matches
// nothing (use Clear for that).
type InvalidationPattern struct {
	JobID             string
	UserID            string
	LocationSubstring string
}

func (p InvalidationPattern) empty() bool {
	return p.JobID == "" && p.UserID == "" && p.LocationSubstring == ""
}

func (p InvalidationPattern) matches(meta types.CacheMetadata) bool {
	if p.empty() {
		return false
	}
	if p.JobID != "" && meta.JobID != p.JobID {
		return false
	}
	if p.UserID != "" && meta.UserID != p.UserID {
		return false
	}
	if p.LocationSubstring != "" &&
		!strings.Contains(NormalizeLocation(meta.Location), NormalizeLocation(p.LocationSubstring)) {
		return false
	}
	return true
}
