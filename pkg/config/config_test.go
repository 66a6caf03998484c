package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Skill.SkillID != "web-site_id" || cfg.Skill.SessionID != "web-site" {
		t.Fatalf("unexpected skill defaults: %+v", cfg.Skill)
	}
	if cfg.Request.TimeoutSec != 30 || cfg.History.Limit != 100 {
		t.Fatalf("unexpected defaults: %+v / %+v", cfg.Request, cfg.History)
	}
	if cfg.History.Backend != "file" {
		t.Fatalf("expected file backend by default, got %q", cfg.History.Backend)
	}
	if cfg.Skill.Endpoint != "" {
		t.Fatalf("endpoint must default to empty, got %q", cfg.Skill.Endpoint)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "skill": {"endpoint": "https://example.org/webhook", "locale": "en-US"},
  "request": {"timeout_sec": 10}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Skill.Endpoint != "https://example.org/webhook" {
		t.Fatalf("unexpected endpoint %q", cfg.Skill.Endpoint)
	}
	if cfg.Skill.Locale != "en-US" {
		t.Fatalf("unexpected locale %q", cfg.Skill.Locale)
	}
	if cfg.Request.TimeoutSec != 10 {
		t.Fatalf("unexpected timeout %d", cfg.Request.TimeoutSec)
	}
	// Untouched sections keep their defaults.
	if cfg.History.Limit != 100 {
		t.Fatalf("expected default history limit, got %d", cfg.History.Limit)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"skil": {}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadConfigRejectsTrailingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"skill": {}} {"more": true}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("expected trailing content error, got %v", err)
	}
}

func TestLoadConfigEnvOverlay(t *testing.T) {
	t.Setenv("UMCHAT_SKILL_ENDPOINT", "https://env.example.org/webhook")
	t.Setenv("UMCHAT_HISTORY_LIMIT", "50")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"skill": {"endpoint": "https://file.example.org"}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Skill.Endpoint != "https://env.example.org/webhook" {
		t.Fatalf("environment must win over the file, got %q", cfg.Skill.Endpoint)
	}
	if cfg.History.Limit != 50 {
		t.Fatalf("unexpected limit %d", cfg.History.Limit)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.SetEndpoint("https://example.org/webhook")
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Endpoint() != "https://example.org/webhook" {
		t.Fatalf("unexpected endpoint after round trip: %q", loaded.Endpoint())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad endpoint", func(c *Config) { c.Skill.Endpoint = "not a url" }, "skill.endpoint"},
		{"zero timeout", func(c *Config) { c.Request.TimeoutSec = 0 }, "request.timeout_sec"},
		{"zero limit", func(c *Config) { c.History.Limit = 0 }, "history.limit"},
		{"unknown backend", func(c *Config) { c.History.Backend = "postgres" }, "history.backend"},
		{"redis without url", func(c *Config) { c.History.Backend = "redis" }, "history.redis_url"},
		{"speech without bridge", func(c *Config) { c.Speech.Enabled = true }, "speech.bridge_url"},
		{"bad port", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
		{"logging without dir", func(c *Config) { c.Logging.Enabled = true; c.Logging.Dir = "" }, "logging.dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if tt.want == "" {
				if len(errs) != 0 {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					return
				}
			}
			t.Fatalf("expected an error mentioning %q, got %v", tt.want, errs)
		})
	}
}
