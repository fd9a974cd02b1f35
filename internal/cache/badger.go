package cache

import (
	"encoding/json"
	"sort"
	"time"

	"salaryscope/internal/config"
	"salaryscope/internal/errors"
	"salaryscope/internal/types"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "analysis:"

// badgerStore is the optional persistent cache tier. BadgerDB handles
// TTL expiry natively; corrupted or unreadable values are treated as
// misses, never as errors, so a damaged store cannot fail a request.
// Like the memory tier it is bounded by entry count, pruning the oldest
// entries by write timestamp when a write pushes it over the bound.
type badgerStore struct {
	db         *badger.DB
	maxEntries int
	logger     *errors.Logger
	gcStop     chan struct{}
}

func newBadgerStore(cfg config.PersistentCacheConfig, logger *errors.Logger) (*badgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil // badger's own logger is too chatty for slog output

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.NewCacheError(errors.ErrCodeInvalidConfig,
			"Failed to open persistent cache store", err)
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	store := &badgerStore{
		db:         db,
		maxEntries: maxEntries,
		logger:     logger,
		gcStop:     make(chan struct{}),
	}

	gcInterval := cfg.GCInterval
	if gcInterval <= 0 {
		gcInterval = 10 * time.Minute
	}
	go store.gcLoop(gcInterval)

	return store, nil
}

// gcLoop periodically reclaims value-log space from expired entries
func (b *badgerStore) gcLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// ErrNoRewrite just means there was nothing to collect.
			if err := b.db.RunValueLogGC(0.5); err != nil && err != badger.ErrNoRewrite {
				b.logger.Warn("Persistent cache GC failed", "error", err.Error())
			}
		case <-b.gcStop:
			return
		}
	}
}

func (b *badgerStore) get(key string) (types.CacheEntry, bool) {
	var entry types.CacheEntry
	found := false

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				corrupt := errors.NewCacheError(errors.ErrCodeCacheCorruptEntry,
					"Corrupt persistent cache entry treated as miss", err)
				b.logger.LogError(corrupt, "Dropping unreadable cache entry", "key", key)
				return nil
			}
			found = true
			return nil
		})
	})
	if err != nil {
		b.logger.Warn("Persistent cache read failed, treating as miss",
			"key", key, "error", err.Error())
		return types.CacheEntry{}, false
	}

	return entry, found
}

func (b *badgerStore) set(entry types.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.NewCacheError(errors.ErrCodeInternalError,
			"Failed to serialize cache entry", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+entry.Key), data).WithTTL(entry.TTL)
		return txn.SetEntry(e)
	})
}

// pruneToBound removes the oldest entries by write timestamp until the
// store is back within its entry bound. Corrupt entries sort first and
// are swept before any readable one. Returns how many were removed.
func (b *badgerStore) pruneToBound() int {
	prefix := []byte(badgerKeyPrefix)

	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("Persistent cache count failed during prune", "error", err.Error())
		return 0
	}
	if count <= b.maxEntries {
		return 0
	}

	type aged struct {
		key []byte
		at  int64
	}
	all := make([]aged, 0, count)
	err = b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			err := item.Value(func(val []byte) error {
				var entry types.CacheEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					all = append(all, aged{key: key, at: 0})
					return nil
				}
				all = append(all, aged{key: key, at: entry.Timestamp.UnixNano()})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("Persistent cache scan failed during prune", "error", err.Error())
		return 0
	}

	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	surplus := count - b.maxEntries
	if surplus > len(all) {
		surplus = len(all)
	}

	removed := 0
	err = b.db.Update(func(txn *badger.Txn) error {
		for _, victim := range all[:surplus] {
			if err := txn.Delete(victim.key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("Persistent cache delete failed during prune", "error", err.Error())
	}
	return removed
}

// invalidateMatching scans all entries and removes those whose
// metadata matches the pattern.
func (b *badgerStore) invalidateMatching(pattern InvalidationPattern) int {
	var keys [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			err := item.Value(func(val []byte) error {
				var entry types.CacheEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					// Corrupt entries are swept along with matches.
					keys = append(keys, key)
					return nil
				}
				if pattern.matches(entry.Metadata) {
					keys = append(keys, key)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("Persistent cache scan failed during invalidation", "error", err.Error())
		return 0
	}

	removed := 0
	err = b.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("Persistent cache delete failed during invalidation", "error", err.Error())
	}
	return removed
}

// clear drops every analysis entry. Badger does not report how many
// keys a prefix drop removed.
func (b *badgerStore) clear() {
	if err := b.db.DropPrefix([]byte(badgerKeyPrefix)); err != nil {
		b.logger.Warn("Persistent cache clear failed", "error", err.Error())
	}
}

func (b *badgerStore) close() error {
	close(b.gcStop)
	return b.db.Close()
}
