package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config is the JSONC file read by the CLI.
type Config struct {
	Entity         string      `json:"entity"`
	PrimaryKey     string      `json:"primary_key"`
	AdditionalKeys []string    `json:"additional_keys"`
	Enable         *bool       `json:"enable"`
	SelfHeal       bool        `json:"self_heal"`
	Cache          CacheConfig `json:"cache"`
	Store          StoreConfig `json:"store"`
}

type CacheConfig struct {
	Kind     string `json:"kind"` // redis | ristretto | bigcache
	Addr     string `json:"addr"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	MaxCost  int64  `json:"max_cost"`
	// Codec is the payload format: json (default), msgpack or cbor.
	Codec string `json:"codec"`
	// MaxPayload rejects cached payloads larger than this many bytes; 0 = off.
	MaxPayload int `json:"max_payload"`
}

type StoreConfig struct {
	Kind           string   `json:"kind"` // file | mongo
	Path           string   `json:"path"`
	URI            string   `json:"uri"`
	Database       string   `json:"database"`
	Collection     string   `json:"collection"`
	ObjectIDFields []string `json:"object_id_fields"`
}

func (c Config) enabled() bool { return c.Enable == nil || *c.Enable }

func loadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (Config, error) {
	std, err := hujson.Standardize(b)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.Cache.Kind == "" {
		cfg.Cache.Kind = "redis"
	}
	if cfg.Cache.Kind == "redis" && cfg.Cache.Addr == "" {
		cfg.Cache.Addr = "localhost:6379"
	}
	if cfg.Cache.Codec == "" {
		cfg.Cache.Codec = "json"
	}
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = "file"
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Entity == "" {
		errs = append(errs, errors.New("config: entity is required"))
	}
	switch c.Cache.Kind {
	case "redis", "ristretto", "bigcache":
	default:
		errs = append(errs, fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind))
	}
	switch c.Cache.Codec {
	case "json", "msgpack", "cbor":
	default:
		errs = append(errs, fmt.Errorf("config: unknown codec %q", c.Cache.Codec))
	}
	switch c.Store.Kind {
	case "file":
		if c.Store.Path == "" {
			errs = append(errs, errors.New("config: store.path is required for file store"))
		}
	case "mongo":
		if c.Store.URI == "" || c.Store.Database == "" || c.Store.Collection == "" {
			errs = append(errs, errors.New("config: store.uri, store.database and store.collection are required for mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown store kind %q", c.Store.Kind))
	}
	return errors.Join(errs...)
}
