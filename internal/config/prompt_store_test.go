package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write prompt file: %v", err)
	}
}

func TestPromptStoreLoadsOverrides(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "synthesize.txt", "custom synthesis prompt %s %s %s %s %s")
	writePrompt(t, dir, "labor-statistics.txt", "  custom labor prompt  \n")
	writePrompt(t, dir, "notes.md", "not a prompt")

	ps, err := NewPromptStore(dir, nil)
	if err != nil {
		t.Fatalf("failed to create prompt store: %v", err)
	}

	if got, ok := ps.Lookup("synthesize"); !ok || got != "custom synthesis prompt %s %s %s %s %s" {
		t.Errorf("expected synthesize override, got %q ok=%v", got, ok)
	}
	if got, ok := ps.Lookup("labor-statistics"); !ok || got != "custom labor prompt" {
		t.Errorf("expected trimmed labor override, got %q ok=%v", got, ok)
	}
	if _, ok := ps.Lookup("notes"); ok {
		t.Error("non-.txt files must not load as overrides")
	}
	if _, ok := ps.Lookup("classify"); ok {
		t.Error("missing overrides must fall through to built-ins")
	}
	if len(ps.Names()) != 2 {
		t.Errorf("expected 2 overrides loaded, got %v", ps.Names())
	}
}

func TestPromptStoreEmptyDir(t *testing.T) {
	ps, err := NewPromptStore("", nil)
	if err != nil {
		t.Fatalf("empty dir should yield a pass-through store: %v", err)
	}
	if _, ok := ps.Lookup("synthesize"); ok {
		t.Error("pass-through store must hold no overrides")
	}
	if err := ps.Reload(); err != nil {
		t.Errorf("reload on a pass-through store should be a no-op: %v", err)
	}
}

func TestPromptStoreRejectsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "synthesize.txt", "   \n\t ")

	if _, err := NewPromptStore(dir, nil); err == nil {
		t.Error("expected an error for an empty prompt file")
	}
}

func TestPromptStoreMissingDir(t *testing.T) {
	if _, err := NewPromptStore(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected an error for a missing prompts directory")
	}
}

func TestPromptStoreReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "classify.txt", "first version")

	ps, err := NewPromptStore(dir, nil)
	if err != nil {
		t.Fatalf("failed to create prompt store: %v", err)
	}

	writePrompt(t, dir, "classify.txt", "second version")
	writePrompt(t, dir, "job-market.txt", "new override")
	if err := ps.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if got, _ := ps.Lookup("classify"); got != "second version" {
		t.Errorf("expected reloaded content, got %q", got)
	}
	if _, ok := ps.Lookup("job-market"); !ok {
		t.Error("expected newly added override after reload")
	}
}

func TestPromptStoreReloadDropsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	writePrompt(t, dir, "classify.txt", "override")

	ps, err := NewPromptStore(dir, nil)
	if err != nil {
		t.Fatalf("failed to create prompt store: %v", err)
	}

	if err := os.Remove(filepath.Join(dir, "classify.txt")); err != nil {
		t.Fatalf("failed to remove prompt file: %v", err)
	}
	if err := ps.Reload(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if _, ok := ps.Lookup("classify"); ok {
		t.Error("removed overrides must fall back to built-ins after reload")
	}
}
