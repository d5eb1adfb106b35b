package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"aromasens/models"
	"aromasens/utils"
)

// Config is the full service configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Providers ProvidersConfig `yaml:"providers"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Port           string   `yaml:"port"`
	Mode           string   `yaml:"mode"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory | sqlite
	DSN    string `yaml:"dsn"`
}

// ProviderConfig describes the backend that fills one provider slot.
// An empty Kind leaves the slot unregistered.
type ProviderConfig struct {
	Kind    models.ProviderKind `yaml:"kind"`
	APIKey  string              `yaml:"apiKey"`
	BaseURL string              `yaml:"baseURL"`
	Model   string              `yaml:"model"`
	Timeout time.Duration       `yaml:"timeout"`
}

// ProvidersConfig holds the three provider slots
type ProvidersConfig struct {
	Primary   ProviderConfig `yaml:"primary"`
	Secondary ProviderConfig `yaml:"secondary"`
	Tertiary  ProviderConfig `yaml:"tertiary"`
}

// Slots maps each provider slot to its configuration
func (p ProvidersConfig) Slots() map[models.ProviderID]ProviderConfig {
	return map[models.ProviderID]ProviderConfig{
		models.ProviderPrimary:   p.Primary,
		models.ProviderSecondary: p.Secondary,
		models.ProviderTertiary:  p.Tertiary,
	}
}

// DefaultsConfig applies when a request names no provider or language
type DefaultsConfig struct {
	Provider models.ProviderID `yaml:"provider"`
	Language models.Language   `yaml:"language"`
}

// CatalogConfig picks the embedding source for the catalog index
type CatalogConfig struct {
	Embedding string `yaml:"embedding"` // local | openai
}

// NotifierConfig selects where recommendation events are sent
type NotifierConfig struct {
	Kind      string        `yaml:"kind"` // none | discord | http
	URL       string        `yaml:"url"`
	WebhookID string        `yaml:"webhookID"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`
}

// TracingConfig controls the OpenTelemetry exporter
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout | otlp
	Endpoint string `yaml:"endpoint"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           ":8080",
			Mode:           "development",
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{Driver: "memory"},
		Providers: ProvidersConfig{
			Primary: ProviderConfig{
				Kind:    models.KindOpenAI,
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o",
				Timeout: 30 * time.Second,
			},
			Secondary: ProviderConfig{
				Kind:    models.KindAnthropic,
				BaseURL: "https://api.anthropic.com/v1",
				Model:   "claude-3-7-sonnet-20250219",
				Timeout: 30 * time.Second,
			},
			Tertiary: ProviderConfig{
				Kind:    models.KindOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
				Timeout: 120 * time.Second,
			},
		},
		Defaults: DefaultsConfig{
			Provider: models.ProviderPrimary,
			Language: models.LanguageES,
		},
		Catalog:  CatalogConfig{Embedding: "local"},
		Notifier: NotifierConfig{Kind: "none", Timeout: 5 * time.Second},
		Tracing:  TracingConfig{Exporter: "stdout"},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = utils.GetEnv("PORT", cfg.Server.Port)
	if !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	cfg.Server.Mode = utils.GetEnv("APP_MODE", cfg.Server.Mode)
	if origins := utils.GetEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.Storage.Driver = utils.GetEnv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = utils.GetEnv("STORAGE_DSN", cfg.Storage.DSN)

	applyProviderEnv(&cfg.Providers.Primary, "PRIMARY")
	applyProviderEnv(&cfg.Providers.Secondary, "SECONDARY")
	applyProviderEnv(&cfg.Providers.Tertiary, "TERTIARY")

	if p, ok := models.ParseProviderID(utils.GetEnv("DEFAULT_PROVIDER", "")); ok {
		cfg.Defaults.Provider = p
	}
	cfg.Defaults.Language = models.ParseLanguage(utils.GetEnv("DEFAULT_LANGUAGE", string(cfg.Defaults.Language)), models.LanguageES)

	cfg.Catalog.Embedding = utils.GetEnv("CATALOG_EMBEDDING", cfg.Catalog.Embedding)

	cfg.Notifier.URL = utils.GetEnv("WEBHOOK_URL", cfg.Notifier.URL)
	cfg.Notifier.WebhookID = utils.GetEnv("DISCORD_WEBHOOK_ID", cfg.Notifier.WebhookID)
	cfg.Notifier.Token = utils.GetEnv("DISCORD_WEBHOOK_TOKEN", cfg.Notifier.Token)
	cfg.Notifier.Kind = utils.GetEnv("NOTIFIER_KIND", cfg.Notifier.Kind)
	if cfg.Notifier.Kind == "none" || cfg.Notifier.Kind == "" {
		switch {
		case cfg.Notifier.WebhookID != "" && cfg.Notifier.Token != "":
			cfg.Notifier.Kind = "discord"
		case cfg.Notifier.URL != "":
			cfg.Notifier.Kind = "http"
		}
	}

	cfg.Tracing.Enabled = utils.GetEnvBool("OTEL_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = utils.GetEnv("OTEL_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Tracing.Endpoint)
}

// applyProviderEnv fills a slot from <SLOT>_PROVIDER_KIND and the kind's own variables
func applyProviderEnv(p *ProviderConfig, slot string) {
	if kind := utils.GetEnv(slot+"_PROVIDER_KIND", ""); kind != "" {
		p.Kind = models.ProviderKind(strings.ToLower(kind))
	}
	switch p.Kind {
	case models.KindOpenAI:
		p.APIKey = utils.GetEnv("OPENAI_API_KEY", p.APIKey)
		p.BaseURL = utils.GetEnv("OPENAI_BASE_URL", p.BaseURL)
		p.Model = utils.GetEnv("OPENAI_MODEL", p.Model)
	case models.KindAnthropic:
		p.APIKey = utils.GetEnv("ANTHROPIC_API_KEY", p.APIKey)
		p.BaseURL = utils.GetEnv("ANTHROPIC_BASE_URL", p.BaseURL)
		p.Model = utils.GetEnv("ANTHROPIC_MODEL", p.Model)
	case models.KindOllama:
		p.BaseURL = utils.GetEnv("OLLAMA_BASE_URL", p.BaseURL)
		p.Model = utils.GetEnv("OLLAMA_MODEL", p.Model)
	case models.KindArk:
		p.APIKey = utils.GetEnv("ARK_API_KEY", p.APIKey)
		p.BaseURL = utils.GetEnv("ARK_BASE_URL", p.BaseURL)
		p.Model = utils.GetEnv("ARK_MODEL", p.Model)
	}
	p.Timeout = utils.GetEnvDuration(slot+"_PROVIDER_TIMEOUT", p.Timeout)
}

// Validate rejects configurations the server cannot start with
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	for id, p := range c.Providers.Slots() {
		switch p.Kind {
		case models.KindOpenAI, models.KindAnthropic, models.KindOllama, models.KindArk, models.KindDummy, "":
		default:
			return fmt.Errorf("provider %s: unknown kind %q", id, p.Kind)
		}
	}
	if _, ok := models.ParseProviderID(string(c.Defaults.Provider)); !ok {
		return fmt.Errorf("unknown default provider %q", c.Defaults.Provider)
	}
	switch c.Catalog.Embedding {
	case "local", "openai":
	default:
		return fmt.Errorf("unknown catalog embedding %q", c.Catalog.Embedding)
	}
	switch c.Notifier.Kind {
	case "none", "":
	case "http":
		if c.Notifier.URL == "" {
			return fmt.Errorf("notifier.url is required for the http notifier")
		}
	case "discord":
		if c.Notifier.WebhookID == "" || c.Notifier.Token == "" {
			return fmt.Errorf("notifier.webhookID and notifier.token are required for the discord notifier")
		}
	default:
		return fmt.Errorf("unknown notifier kind %q", c.Notifier.Kind)
	}
	return nil
}
