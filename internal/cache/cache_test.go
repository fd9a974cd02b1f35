package cache

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"salaryscope/internal/config"
	"salaryscope/internal/errors"
	"salaryscope/internal/types"
)

func newTestCache(t *testing.T, cfg config.CacheConfig) *AnalysisCache {
	t.Helper()
	c, err := New(cfg, errors.NewLogger(slog.LevelError))
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func analysisFor(title string) types.CompensationAnalysis {
	a := types.CompensationAnalysis{}
	a.Role.Title = title
	return a
}

func TestCacheSetGet(t *testing.T) {
	c := newTestCache(t, config.CacheConfig{TTL: time.Hour})

	key := c.Key(KeyParams{JobID: "job-1", Location: "Berlin, Germany"})
	meta := types.CacheMetadata{JobID: "job-1", Location: "Berlin, Germany"}
	c.Set(key, analysisFor("Backend Engineer"), meta)

	entry, ok := c.Get(key)
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if entry.Data.Role.Title != "Backend Engineer" {
		t.Errorf("expected stored analysis back, got %q", entry.Data.Role.Title)
	}
	if entry.Metadata.Version != EntryVersion {
		t.Errorf("expected version %q stamped into metadata, got %q", EntryVersion, entry.Metadata.Version)
	}

	if _, ok := c.Get(c.Key(KeyParams{JobID: "job-2", Location: "Berlin, Germany"})); ok {
		t.Error("expected a miss for a different job")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %+v", stats)
	}
}

func TestCacheStaleEntryIsMiss(t *testing.T) {
	c := newTestCache(t, config.CacheConfig{TTL: time.Hour})

	key := c.Key(KeyParams{JobID: "job-1"})
	c.Set(key, analysisFor("Backend Engineer"), types.CacheMetadata{JobID: "job-1"})

	// Backdate the entry past its TTL
	entry, _ := c.memory.get(key)
	entry.Timestamp = time.Now().Add(-2 * time.Hour)
	c.memory.set(entry)

	if _, ok := c.Get(key); ok {
		t.Error("expected a stale entry to read as a miss")
	}
	stats := c.Stats()
	if stats.StaleHits != 1 {
		t.Errorf("expected 1 stale hit, got %+v", stats)
	}
}

func TestCacheRecencyEviction(t *testing.T) {
	c := newTestCache(t, config.CacheConfig{TTL: time.Hour, MaxMemoryEntries: 3})

	// Distinct timestamps drive the eviction order
	for i := 0; i < 4; i++ {
		key := c.Key(KeyParams{JobID: fmt.Sprintf("job-%d", i)})
		entry := c.Set(key, analysisFor("Role"), types.CacheMetadata{JobID: fmt.Sprintf("job-%d", i)})
		entry.Timestamp = time.Now().Add(time.Duration(i) * time.Millisecond)
		c.memory.set(entry)
	}

	if got := c.memory.len(); got != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", got)
	}
	if _, ok := c.Get(c.Key(KeyParams{JobID: "job-0"})); ok {
		t.Error("expected the oldest entry to be evicted")
	}
	if _, ok := c.Get(c.Key(KeyParams{JobID: "job-3"})); !ok {
		t.Error("expected the newest entry to survive")
	}
	if c.Stats().Evictions == 0 {
		t.Error("expected the eviction counter to advance")
	}
}

func TestCacheInvalidatePatterns(t *testing.T) {
	seed := func(c *AnalysisCache) {
		entries := []types.CacheMetadata{
			{JobID: "job-1", UserID: "user-1", Location: "Berlin, Germany"},
			{JobID: "job-1", UserID: "user-2", Location: "New York, NY"},
			{JobID: "job-2", UserID: "user-1", Location: "Berlin, Germany"},
		}
		for i, meta := range entries {
			key := c.Key(KeyParams{JobID: meta.JobID, UserID: meta.UserID, Location: meta.Location})
			c.Set(key, analysisFor(fmt.Sprintf("Role %d", i)), meta)
		}
	}

	tests := []struct {
		name            string
		pattern         InvalidationPattern
		expectedRemoved int
	}{
		{"by job id", InvalidationPattern{JobID: "job-1"}, 2},
		{"by user id", InvalidationPattern{UserID: "user-1"}, 2},
		{"by location substring", InvalidationPattern{LocationSubstring: "berlin"}, 2},
		{"job and user combined", InvalidationPattern{JobID: "job-1", UserID: "user-1"}, 1},
		{"no match", InvalidationPattern{JobID: "job-9"}, 0},
		{"empty pattern matches nothing", InvalidationPattern{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t, config.CacheConfig{TTL: time.Hour})
			seed(c)
			if removed := c.Invalidate(tt.pattern); removed != tt.expectedRemoved {
				t.Errorf("expected %d removed, got %d", tt.expectedRemoved, removed)
			}
		})
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, config.CacheConfig{TTL: time.Hour})

	for i := 0; i < 3; i++ {
		meta := types.CacheMetadata{JobID: fmt.Sprintf("job-%d", i)}
		c.Set(c.Key(KeyParams{JobID: meta.JobID}), analysisFor("Role"), meta)
	}

	if removed := c.Clear(); removed != 3 {
		t.Errorf("expected 3 entries cleared, got %d", removed)
	}
	if got := c.Stats().MemoryEntries; got != 0 {
		t.Errorf("expected an empty cache after clear, got %d entries", got)
	}
}

func TestCachePersistentTierSurvivesMemoryLoss(t *testing.T) {
	cfg := config.CacheConfig{
		TTL: time.Hour,
		Persistent: config.PersistentCacheConfig{
			Enabled: true,
			Path:    t.TempDir(),
		},
	}
	c := newTestCache(t, cfg)

	key := c.Key(KeyParams{JobID: "job-1"})
	c.Set(key, analysisFor("Backend Engineer"), types.CacheMetadata{JobID: "job-1"})

	// Drop the memory tier; the persistent copy should repopulate it
	c.memory.clear()

	entry, ok := c.Get(key)
	if !ok {
		t.Fatal("expected a persistent-tier hit after memory loss")
	}
	if entry.Data.Role.Title != "Backend Engineer" {
		t.Errorf("expected stored analysis back, got %q", entry.Data.Role.Title)
	}
	if _, ok := c.memory.get(key); !ok {
		t.Error("expected the persistent hit to be promoted into memory")
	}
}

func TestCachePersistentTierPrunedToBound(t *testing.T) {
	cfg := config.CacheConfig{
		TTL: time.Hour,
		Persistent: config.PersistentCacheConfig{
			Enabled:    true,
			Path:       t.TempDir(),
			MaxEntries: 3,
		},
	}
	c := newTestCache(t, cfg)

	// Distinct write timestamps drive the prune order
	for i := 0; i < 4; i++ {
		jobID := fmt.Sprintf("job-%d", i)
		c.Set(c.Key(KeyParams{JobID: jobID}), analysisFor("Role"), types.CacheMetadata{JobID: jobID})
		time.Sleep(2 * time.Millisecond)
	}

	if _, ok := c.persistent.get(c.Key(KeyParams{JobID: "job-0"})); ok {
		t.Error("expected the oldest persistent entry to be pruned")
	}
	if _, ok := c.persistent.get(c.Key(KeyParams{JobID: "job-3"})); !ok {
		t.Error("expected the newest persistent entry to survive")
	}
	if c.Stats().Evictions == 0 {
		t.Error("expected the eviction counter to advance")
	}
}

func TestCacheVersionMismatchIsMiss(t *testing.T) {
	cfg := config.CacheConfig{
		TTL: time.Hour,
		Persistent: config.PersistentCacheConfig{
			Enabled: true,
			Path:    t.TempDir(),
		},
	}
	c := newTestCache(t, cfg)

	key := c.Key(KeyParams{JobID: "job-1"})
	c.Set(key, analysisFor("Backend Engineer"), types.CacheMetadata{JobID: "job-1"})

	// Rewrite the persistent copy with a foreign version and drop the
	// memory tier so the lookup has to go through it
	entry, _ := c.memory.get(key)
	entry.Metadata.Version = "0"
	if err := c.persistent.set(entry); err != nil {
		t.Fatalf("failed to rewrite persistent entry: %v", err)
	}
	c.memory.clear()

	if _, ok := c.Get(key); ok {
		t.Error("expected a version-mismatched persistent entry to read as a miss")
	}
}
