package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigJSONC(t *testing.T) {
	cfg, err := parseConfig([]byte(`{
		// entries collection
		"entity": "Entry",
		"additional_keys": ["slug"],
		"store": {"kind": "file", "path": "entries.json"}, // trailing comma ok
	}`))
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Entity != "Entry" || len(cfg.AdditionalKeys) != 1 || cfg.AdditionalKeys[0] != "slug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Cache.Kind != "redis" || cfg.Cache.Addr != "localhost:6379" {
		t.Fatalf("cache defaults not applied: %+v", cfg.Cache)
	}
	if !cfg.enabled() {
		t.Fatalf("enable should default to true")
	}
}

func TestParseConfigDisable(t *testing.T) {
	cfg, err := parseConfig([]byte(`{"entity":"Entry","enable":false,"store":{"path":"e.json"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.enabled() {
		t.Fatalf("enable=false ignored")
	}
}

func TestParseConfigValidation(t *testing.T) {
	_, err := parseConfig([]byte(`{"cache":{"kind":"memcached"},"store":{"kind":"mongo"}}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"entity is required", `unknown cache kind "memcached"`, "required for mongo store"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docache.jsonc")
	if err := os.WriteFile(path, []byte(`{"entity":"Entry","cache":{"kind":"ristretto"},"store":{"path":"e.json"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Kind != "ristretto" || cfg.Cache.Addr != "" {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
}
