// Package config loads the arbor configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/traverse"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the complete runtime configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Traversal traverse.Config `yaml:"traversal"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	LLM       LLMConfig       `yaml:"llm"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Batch     BatchConfig     `yaml:"batch"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type ResolverConfig struct {
	// MinConfidence rejects advisor resolutions scoring below it.
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
	// Offline disables the LLM advisor even when a key is configured.
	Offline bool `yaml:"offline"`
}

type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" validate:"oneof=memory file redis"`
	// Dir is the report directory of the file driver.
	Dir   string      `yaml:"dir" validate:"required_if=Driver file"`
	Redis RedisConfig `yaml:"redis"`
	// EncryptionKey enables AES-GCM encryption at rest (32 bytes, base64 or hex).
	EncryptionKey string `yaml:"encryption_key"`
	// MaskKeys are metadata key patterns masked before reports are stored.
	MaskKeys []string `yaml:"mask_keys"`
	// LockTTL bounds how long one replica may hold a document lock.
	LockTTL time.Duration `yaml:"lock_ttl" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr" validate:"required"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"gte=0"`
	Metrics      bool   `yaml:"metrics"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency" validate:"gte=1"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info", Format: "text"},
		Traversal: traverse.DefaultConfig(),
		LLM: LLMConfig{
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Store: StoreConfig{
			Driver:  DriverMemory,
			Dir:     ".arbor/reports",
			LockTTL: 30 * time.Second,
		},
		Server: ServerConfig{Addr: ":8080", Metrics: true},
		Batch:  BatchConfig{Concurrency: 4},
	}
}

var validate = validator.New()

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Log.Level, "ARBOR_LOG_LEVEL")
	set(&c.LLM.APIKey, "ARBOR_LLM_API_KEY", "OPENAI_API_KEY")
	set(&c.LLM.Model, "ARBOR_LLM_MODEL")
	set(&c.LLM.BaseURL, "ARBOR_LLM_BASE_URL")
	set(&c.Store.EncryptionKey, "ARBOR_ENCRYPTION_KEY")

	if v, ok := lookup("ARBOR_REDIS_ADDR"); ok && v != "" {
		c.Store.Redis.Addr = v
		c.Store.Driver = DriverRedis
	}
}

// Validate checks the struct constraints and the cross-field rules.
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if c.Store.Driver == DriverRedis && c.Store.Redis.Addr == "" {
		return errors.New("invalid config: store.redis.addr is required by the redis driver")
	}
	for _, p := range c.Store.MaskKeys {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid config: store.mask_keys: %w", err)
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
