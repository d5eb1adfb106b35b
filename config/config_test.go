package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"aromasens/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver=%q", cfg.Storage.Driver)
	}
	if cfg.Defaults.Provider != models.ProviderPrimary {
		t.Fatalf("default provider=%q", cfg.Defaults.Provider)
	}
	if cfg.Providers.Secondary.Kind != models.KindAnthropic {
		t.Fatalf("secondary kind=%q", cfg.Providers.Secondary.Kind)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  port: "9090"
storage:
  driver: sqlite
  dsn: /tmp/aromasens.db
providers:
  tertiary:
    kind: dummy
    timeout: 3s
defaults:
  language: en
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEFAULT_PROVIDER", "secondary")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != ":9090" {
		t.Fatalf("port=%q", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.DSN != "/tmp/aromasens.db" {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
	if cfg.Providers.Tertiary.Kind != models.KindDummy || cfg.Providers.Tertiary.Timeout != 3*time.Second {
		t.Fatalf("tertiary=%+v", cfg.Providers.Tertiary)
	}
	if cfg.Providers.Primary.APIKey != "sk-test" {
		t.Fatalf("primary api key not read from env")
	}
	if cfg.Defaults.Provider != models.ProviderSecondary {
		t.Fatalf("default provider=%q", cfg.Defaults.Provider)
	}
	if cfg.Defaults.Language != models.LanguageEN {
		t.Fatalf("language=%q", cfg.Defaults.Language)
	}
}

func TestNotifierKindInferredFromEnv(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/aromasens")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notifier.Kind != "http" {
		t.Fatalf("kind=%q", cfg.Notifier.Kind)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	cfg = Default()
	cfg.Storage.Driver = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for sqlite without dsn")
	}
}
