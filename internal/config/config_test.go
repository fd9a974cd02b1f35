package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	var cfg Config
	cfg.AI.APIKey = "test-key"
	cfg.AI.Timeout = 60 * time.Second
	cfg.Pipeline.AdapterTimeout = 15 * time.Second
	cfg.Cache.TTL = 24 * time.Hour
	cfg.Server.Port = "8080"
	cfg.Server.TLS.Mode = "disabled"
	cfg.App.DefaultFormat = "json"
	cfg.App.SupportedFormats = []string{"json", "text", "markdown"}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.AI.APIKey = "" },
			wantErr: "AI API key is required",
		},
		{
			name: "missing api key allowed with vault",
			mutate: func(c *Config) {
				c.AI.APIKey = ""
				c.Vault.Enabled = true
			},
		},
		{
			name:    "non-positive ai timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: "AI timeout must be positive",
		},
		{
			name:    "non-positive adapter timeout",
			mutate:  func(c *Config) { c.Pipeline.AdapterTimeout = 0 },
			wantErr: "pipeline adapter timeout must be positive",
		},
		{
			name:    "non-positive cache ttl",
			mutate:  func(c *Config) { c.Cache.TTL = 0 },
			wantErr: "cache TTL must be positive",
		},
		{
			name: "persistent tier without path",
			mutate: func(c *Config) {
				c.Cache.Persistent.Enabled = true
				c.Cache.Persistent.Path = ""
			},
			wantErr: "persistent cache path is required",
		},
		{
			name:    "missing server port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "default format not in supported list",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: "invalid default format: xml",
		},
		{
			name: "server tls without cert files",
			mutate: func(c *Config) {
				c.Server.TLS.Mode = "server"
			},
			wantErr: "TLS certificate and key files are required",
		},
		{
			name: "server tls with cert files",
			mutate: func(c *Config) {
				c.Server.TLS.Mode = "server"
				c.Server.TLS.CertFile = "/path/to/cert.pem"
				c.Server.TLS.KeyFile = "/path/to/key.pem"
			},
		},
		{
			name:    "invalid tls mode",
			mutate:  func(c *Config) { c.Server.TLS.Mode = "mutual" },
			wantErr: "invalid TLS mode: mutual",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid config, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
