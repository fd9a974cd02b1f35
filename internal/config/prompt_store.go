package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"salaryscope/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// PromptStore holds prompt template overrides loaded from a directory.
// Each file named <name>.txt in the directory overrides the built-in
// prompt with the same name (one file per signal source, plus
// "classify" and "synthesize"). The store is safe for concurrent use;
// lookups during a reload see either the old or the new content.
type PromptStore struct {
	mu        sync.RWMutex
	dir       string
	overrides map[string]string
	logger    *errors.Logger
}

// NewPromptStore creates a store for the given directory. An empty dir
// yields a store that always falls through to built-in prompts.
func NewPromptStore(dir string, logger *errors.Logger) (*PromptStore, error) {
	ps := &PromptStore{
		dir:       dir,
		overrides: make(map[string]string),
		logger:    logger,
	}
	if dir == "" {
		return ps, nil
	}
	if err := ps.Reload(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Lookup returns the override for name, or ok=false when the built-in
// prompt should be used.
func (ps *PromptStore) Lookup(name string) (string, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	content, ok := ps.overrides[name]
	return content, ok
}

// Names returns the names of all loaded overrides.
func (ps *PromptStore) Names() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	names := make([]string, 0, len(ps.overrides))
	for name := range ps.overrides {
		names = append(names, name)
	}
	return names
}

// Reload re-reads all .txt files from the directory. Empty files are
// rejected so a truncated template cannot silently blank a prompt.
func (ps *PromptStore) Reload() error {
	if ps.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		return fmt.Errorf("failed to read prompts directory %s: %w", ps.dir, err)
	}

	loaded := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		path := filepath.Join(ps.dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read prompt file %s: %w", path, err)
		}
		trimmed := strings.TrimSpace(string(content))
		if trimmed == "" {
			return fmt.Errorf("prompt file %s is empty", path)
		}
		name := strings.TrimSuffix(entry.Name(), ".txt")
		loaded[name] = trimmed
	}

	ps.mu.Lock()
	ps.overrides = loaded
	ps.mu.Unlock()

	if ps.logger != nil {
		ps.logger.Info("Prompt overrides loaded", "dir", ps.dir, "count", len(loaded))
	}

	return nil
}

// PromptWatcher watches the prompt directory and reloads the store on
// changes. Events are debounced so editors that write in several steps
// trigger a single reload.
type PromptWatcher struct {
	store         *PromptStore
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	stopChan      chan struct{}
	stopOnce      sync.Once
	logger        *errors.Logger
}

// NewPromptWatcher creates a watcher for the store's directory.
func NewPromptWatcher(store *PromptStore, logger *errors.Logger) (*PromptWatcher, error) {
	if store == nil || store.dir == "" {
		return nil, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsWatcher.Add(store.dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch prompts directory %s: %w", store.dir, err)
	}

	return &PromptWatcher{
		store:         store,
		fsWatcher:     fsWatcher,
		debounceDelay: 2 * time.Second,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}, nil
}

// Start begins watching for prompt file changes
func (pw *PromptWatcher) Start() {
	go pw.watchLoop()
	if pw.logger != nil {
		pw.logger.Info("Prompt watcher started", "dir", pw.store.dir, "debounce_delay", pw.debounceDelay)
	}
}

// Stop stops the watcher
func (pw *PromptWatcher) Stop() {
	pw.stopOnce.Do(func() {
		close(pw.stopChan)
		pw.fsWatcher.Close()
		if pw.logger != nil {
			pw.logger.Info("Prompt watcher stopped", "dir", pw.store.dir)
		}
	})
}

func (pw *PromptWatcher) watchLoop() {
	var debounceTimer *time.Timer
	var timerChan <-chan time.Time

	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if !pw.shouldProcessEvent(event) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(pw.debounceDelay)
			timerChan = debounceTimer.C

		case <-timerChan:
			timerChan = nil
			if err := pw.store.Reload(); err != nil {
				if pw.logger != nil {
					pw.logger.LogError(err, "Prompt reload failed, keeping previous templates", "dir", pw.store.dir)
				}
				continue
			}
			if pw.logger != nil {
				pw.logger.Info("Prompt overrides reloaded", "dir", pw.store.dir)
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			if pw.logger != nil {
				pw.logger.Warn("Prompt watcher error", "error", err)
			}

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".txt") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
