package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	BackendAirtable = "airtable"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	Port               string `koanf:"port"`
	LogLevel           string `koanf:"log_level"`
	HTTPTimeoutSeconds int    `koanf:"http_timeout_seconds"`

	StoreBackend    string `koanf:"store_backend"`
	AirtableBaseURL string `koanf:"airtable_base_url"`
	AirtableBaseID  string `koanf:"airtable_base_id"`
	AirtableAPIKey  string `koanf:"airtable_api_key"`
	SQLitePath      string `koanf:"sqlite_path"`

	AnthropicAPIKey  string `koanf:"anthropic_api_key"`
	AnthropicBaseURL string `koanf:"anthropic_base_url"`
	AnthropicModel   string `koanf:"anthropic_model"`

	GeminiAPIKey     string `koanf:"gemini_api_key"`
	GeminiEmbedModel string `koanf:"gemini_embed_model"`
	SupabaseDBURL    string `koanf:"supabase_db_url"`
	SearchTable      string `koanf:"search_table"`

	N8NBaseURL    string            `koanf:"n8n_base_url"`
	WebhookSecret string            `koanf:"webhook_secret"`
	Webhooks      map[string]string `koanf:"webhooks"`

	ImageBaseURL string `koanf:"image_base_url"`
}

// Load reads .env (if present), then the optional YAML file at path, then the
// process environment. Later sources win. Env keys are the upper-cased field
// names: AIRTABLE_API_KEY -> airtable_api_key.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(b), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	// only declared scalar keys; empty variables do not clear values set by the file
	allowed := envKeys()
	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		key = strings.ToLower(key)
		if _, ok := allowed[key]; !ok || value == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys lists the koanf keys of Config that can come from the environment.
// Maps (webhooks) are YAML only.
func envKeys() map[string]struct{} {
	t := reflect.TypeOf(Config{})
	out := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || f.Type.Kind() == reflect.Map {
			continue
		}
		out[tag] = struct{}{}
	}
	return out
}

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.HTTPTimeoutSeconds <= 0 {
		c.HTTPTimeoutSeconds = 15
	}
	if c.AirtableBaseURL == "" {
		c.AirtableBaseURL = "https://api.airtable.com/v0"
	}
	if c.StoreBackend == "" {
		if c.AirtableAPIKey != "" {
			c.StoreBackend = BackendAirtable
		} else {
			c.StoreBackend = BackendMemory
		}
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "marketops.db"
	}
	if c.AnthropicBaseURL == "" {
		c.AnthropicBaseURL = "https://api.anthropic.com/v1"
	}
	if c.AnthropicModel == "" {
		c.AnthropicModel = "claude-sonnet-4-20250514"
	}
	if c.GeminiEmbedModel == "" {
		c.GeminiEmbedModel = "gemini-embedding-001"
	}
	if c.SearchTable == "" {
		c.SearchTable = "documents"
	}
	if c.N8NBaseURL == "" {
		c.N8NBaseURL = "http://localhost:5678"
	}
	if c.Webhooks == nil {
		c.Webhooks = map[string]string{}
	}
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendAirtable, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("invalid store_backend %q", c.StoreBackend)
	}
	return nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WebhookURL is the fixed automation endpoint for a page: an explicit entry
// from the config file, else <n8n_base_url>/webhook/<page>.
func (c Config) WebhookURL(page string) string {
	if u, ok := c.Webhooks[page]; ok && u != "" {
		return u
	}
	return strings.TrimRight(c.N8NBaseURL, "/") + "/webhook/" + page
}
