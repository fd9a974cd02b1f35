package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyGeminiKeyToConfig(t *testing.T) {
	cfg := &Config{}
	applyGeminiKeyToConfig(cfg, "vault-key")

	if cfg.AI.APIKey != "vault-key" {
		t.Errorf("expected global key applied, got %q", cfg.AI.APIKey)
	}
	for name, got := range map[string]string{
		"classify":   cfg.AI.Classify.APIKey,
		"signals":    cfg.AI.Signals.APIKey,
		"synthesize": cfg.AI.Synthesize.APIKey,
	} {
		if got != "vault-key" {
			t.Errorf("expected %s key applied, got %q", name, got)
		}
	}
}

func TestApplyGeminiKeyToConfigWithExistingKeys(t *testing.T) {
	cfg := &Config{}
	cfg.AI.Synthesize.APIKey = "operation-specific-key"

	applyGeminiKeyToConfig(cfg, "vault-key")

	if cfg.AI.Synthesize.APIKey != "operation-specific-key" {
		t.Errorf("operation-specific keys must not be overwritten, got %q", cfg.AI.Synthesize.APIKey)
	}
	if cfg.AI.Classify.APIKey != "vault-key" {
		t.Errorf("unset operation keys should receive the vault key, got %q", cfg.AI.Classify.APIKey)
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("direct token", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "direct-token" {
			t.Errorf("expected direct token, got %q", token)
		}
	})

	t.Run("token file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "token")
		if err := os.WriteFile(tokenFile, []byte("  file-token \n"), 0o600); err != nil {
			t.Fatalf("failed to write token file: %v", err)
		}

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "file-token" {
			t.Errorf("expected trimmed file token, got %q", token)
		}
	})

	t.Run("direct token wins over file", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct", TokenFile: "/does/not/exist"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "direct" {
			t.Errorf("expected direct token, got %q", token)
		}
	})

	t.Run("missing token file", func(t *testing.T) {
		if _, err := resolveVaultToken(VaultConfig{TokenFile: "/does/not/exist"}, nil); err == nil {
			t.Error("expected an error for a missing token file")
		}
	})

	t.Run("no token at all", func(t *testing.T) {
		if _, err := resolveVaultToken(VaultConfig{}, nil); err == nil {
			t.Error("expected an error when no token is configured")
		}
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{}
	cfg.Vault.Enabled = false

	if err := ApplyVaultSecrets(cfg, nil); err != nil {
		t.Errorf("disabled vault should be a no-op, got: %v", err)
	}
	if cfg.AI.APIKey != "" {
		t.Errorf("disabled vault must not touch the config, got key %q", cfg.AI.APIKey)
	}
}
