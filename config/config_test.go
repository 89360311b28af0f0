package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Provider != ProviderOpenRouter {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("temperature = %v", cfg.Temperature)
	}
	if cfg.StoreBackend != StoreSQLite || cfg.SQLitePath == "" {
		t.Errorf("store defaults wrong: %+v", cfg)
	}
}

func TestLoadYAMLAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: anthropic\nmodel: claude-sonnet-4-20250514\ntemperature: 0.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TEMPERATURE", "0.1")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("provider = %q, want anthropic from YAML", cfg.Provider)
	}
	if cfg.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", cfg.Model)
	}
	// Environment beats YAML.
	if cfg.Temperature != 0.1 {
		t.Errorf("temperature = %v, want env override 0.1", cfg.Temperature)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("api key = %q, want provider-specific env key", cfg.APIKey)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Provider != ProviderOpenRouter {
		t.Errorf("provider = %q, want defaults", cfg.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults with key", mutate: func(c *Config) { c.APIKey = "k" }},
		{name: "missing api key", mutate: func(c *Config) {}, wantErr: true},
		{name: "mock needs no key", mutate: func(c *Config) { c.Provider = ProviderMock }},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "llamacpp" }, wantErr: true},
		{name: "empty model", mutate: func(c *Config) { c.Provider = ProviderMock; c.Model = "" }, wantErr: true},
		{name: "mysql without dsn", mutate: func(c *Config) {
			c.Provider = ProviderMock
			c.StoreBackend = StoreMySQL
		}, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.Provider = ProviderMock
			c.StoreBackend = StoreRedis
			c.RedisURL = "redis://localhost:6379/0"
		}},
		{name: "memory store", mutate: func(c *Config) {
			c.Provider = ProviderMock
			c.StoreBackend = StoreMemory
		}},
		{name: "unknown store", mutate: func(c *Config) {
			c.Provider = ProviderMock
			c.StoreBackend = "etcd"
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
