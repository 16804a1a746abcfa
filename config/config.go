// Package config loads service settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/dgtlunion/konspekt/llm"
	"github.com/dgtlunion/konspekt/webhook"
)

// Config is the full service configuration. Secrets normally come from the
// environment rather than the file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Assets    AssetsConfig    `toml:"assets"`
	LLM       LLMConfig       `toml:"llm"`
	Fireflies FirefliesConfig `toml:"fireflies"`
	N8N       RelayConfig     `toml:"n8n"`
	Redis     RedisConfig     `toml:"redis"`
	Layout    LayoutConfig    `toml:"layout"`
}

type ServerConfig struct {
	Port         int    `toml:"port" validate:"min=1,max=65535"`
	AllowOrigin  string `toml:"allow_origin"`
	MaxBodyBytes int64  `toml:"max_body_bytes" validate:"gte=0"`
	// Diagnostics mounts the echo and self-test routes.
	Diagnostics bool `toml:"diagnostics"`
}

// Addr is the listen address for Port.
func (s ServerConfig) Addr() string { return ":" + strconv.Itoa(s.Port) }

type StorageConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

type AssetsConfig struct {
	// Dir holds the background and Montserrat files. Empty renders with the
	// built-in fallbacks.
	Dir string `toml:"dir"`
}

type LLMConfig struct {
	llm.Config
	APIKey  string        `toml:"api_key"`
	Timeout time.Duration `toml:"timeout" validate:"gte=0"`
}

type FirefliesConfig struct {
	WebhookSecret string        `toml:"webhook_secret"`
	APIKey        string        `toml:"api_key"`
	GraphQLURL    string        `toml:"graphql_url" validate:"omitempty,url"`
	Timeout       time.Duration `toml:"timeout" validate:"gte=0"`
}

type RelayConfig struct {
	URL     string        `toml:"url" validate:"omitempty,url"`
	Timeout time.Duration `toml:"timeout" validate:"gte=0"`
}

type RedisConfig struct {
	// Addr enables Redis backed webhook dedupe; empty keeps it in memory.
	Addr      string        `toml:"addr"`
	Password  string        `toml:"password"`
	DB        int           `toml:"db" validate:"gte=0"`
	Prefix    string        `toml:"prefix"`
	DedupeTTL time.Duration `toml:"dedupe_ttl" validate:"gt=0"`
}

// Default returns a configuration that runs locally without a file.
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: 3001, AllowOrigin: "*"},
		Storage: StorageConfig{Dir: "generated-pdfs"},
		LLM:     LLMConfig{Config: llm.DefaultConfig(), Timeout: 2 * time.Minute},
		Fireflies: FirefliesConfig{
			GraphQLURL: webhook.DefaultGraphQLURL,
			Timeout:    30 * time.Second,
		},
		N8N:    RelayConfig{Timeout: 30 * time.Second},
		Redis:  RedisConfig{Prefix: "konspekt:meeting:", DedupeTTL: 24 * time.Hour},
		Layout: LayoutConfig{BoldMode: "inline", Location: "Europe/Kyiv"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides settings from the environment variables the service
// has always been deployed with.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GEMINI_API_KEY", &c.LLM.APIKey)
	str("GEMINI_MODEL", &c.LLM.Model)
	str("FIREFLIES_WEBHOOK_KEY", &c.Fireflies.WebhookSecret)
	str("FIREFLIES_API_KEY", &c.Fireflies.APIKey)
	str("N8N_WEBHOOK_PROD_URL", &c.N8N.URL)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("KONSPEKT_STORAGE_DIR", &c.Storage.Dir)
	str("KONSPEKT_ASSETS_DIR", &c.Assets.Dir)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the layout overrides.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Layout.Resolve(); err != nil {
		return err
	}
	return nil
}
