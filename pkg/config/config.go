package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Skill   SkillConfig   `json:"skill"`
	Request RequestConfig `json:"request"`
	History HistoryConfig `json:"history"`
	Speech  SpeechConfig  `json:"speech"`
	Gateway GatewayConfig `json:"gateway"`
	Logging LoggingConfig `json:"logging"`
	mu      sync.RWMutex
}

type SkillConfig struct {
	// Endpoint is the skill webhook URL. Sends are rejected before any
	// network activity while it is empty.
	Endpoint  string `json:"endpoint" env:"UMCHAT_SKILL_ENDPOINT"`
	SkillID   string `json:"skill_id" env:"UMCHAT_SKILL_ID"`
	SessionID string `json:"session_id" env:"UMCHAT_SKILL_SESSION_ID"`
	ClientID  string `json:"client_id" env:"UMCHAT_SKILL_CLIENT_ID"`
	Locale    string `json:"locale" env:"UMCHAT_SKILL_LOCALE"`
	Timezone  string `json:"timezone" env:"UMCHAT_SKILL_TIMEZONE"`
	CDNBase   string `json:"cdn_base" env:"UMCHAT_SKILL_CDN_BASE"`
}

type RequestConfig struct {
	TimeoutSec  int `json:"timeout_sec" env:"UMCHAT_REQUEST_TIMEOUT_SEC"`
	RateEveryMS int `json:"rate_every_ms" env:"UMCHAT_REQUEST_RATE_EVERY_MS"`
	RateBurst   int `json:"rate_burst" env:"UMCHAT_REQUEST_RATE_BURST"`
}

type HistoryConfig struct {
	Limit         int    `json:"limit" env:"UMCHAT_HISTORY_LIMIT"`
	Backend       string `json:"backend" env:"UMCHAT_HISTORY_BACKEND"`
	Dir           string `json:"dir" env:"UMCHAT_HISTORY_DIR"`
	SQLitePath    string `json:"sqlite_path" env:"UMCHAT_HISTORY_SQLITE_PATH"`
	RedisURL      string `json:"redis_url" env:"UMCHAT_HISTORY_REDIS_URL"`
	RetentionCron string `json:"retention_cron" env:"UMCHAT_HISTORY_RETENTION_CRON"`
}

type SpeechConfig struct {
	Enabled   bool   `json:"enabled" env:"UMCHAT_SPEECH_ENABLED"`
	BridgeURL string `json:"bridge_url" env:"UMCHAT_SPEECH_BRIDGE_URL"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"UMCHAT_GATEWAY_HOST"`
	Port int    `json:"port" env:"UMCHAT_GATEWAY_PORT"`
}

type LoggingConfig struct {
	Enabled       bool   `json:"enabled" env:"UMCHAT_LOGGING_ENABLED"`
	Dir           string `json:"dir" env:"UMCHAT_LOGGING_DIR"`
	Filename      string `json:"filename" env:"UMCHAT_LOGGING_FILENAME"`
	MaxSizeMB     int    `json:"max_size_mb" env:"UMCHAT_LOGGING_MAX_SIZE_MB"`
	RetentionDays int    `json:"retention_days" env:"UMCHAT_LOGGING_RETENTION_DAYS"`
}

var (
	isDebug bool
	muDebug sync.RWMutex
)

func SetDebugMode(debug bool) {
	muDebug.Lock()
	defer muDebug.Unlock()
	isDebug = debug
}

func IsDebugMode() bool {
	muDebug.RLock()
	defer muDebug.RUnlock()
	return isDebug
}

func GetConfigDir() string {
	if IsDebugMode() {
		return ".umchat"
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".umchat")
}

func DefaultConfig() *Config {
	configDir := GetConfigDir()
	return &Config{
		Skill: SkillConfig{
			SkillID:   "web-site_id",
			SessionID: "web-site",
			ClientID:  "web-site",
			Locale:    "ru-Ru",
			Timezone:  "UTC",
		},
		Request: RequestConfig{
			TimeoutSec:  30,
			RateEveryMS: 300,
			RateBurst:   3,
		},
		History: HistoryConfig{
			Limit:         100,
			Backend:       "file",
			Dir:           filepath.Join(configDir, "history"),
			SQLitePath:    filepath.Join(configDir, "umchat.db"),
			RetentionCron: "@every 6h",
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8098,
		},
		Logging: LoggingConfig{
			Enabled:       false,
			Dir:           filepath.Join(configDir, "logs"),
			Filename:      "umchat.log",
			MaxSizeMB:     20,
			RetentionDays: 3,
		},
	}
}

// LoadConfig reads the JSON config file, overlays UMCHAT_* environment
// variables, and fills gaps with defaults. A missing file is fine; a
// malformed one is not.
func LoadConfig(path string) (*Config, error) {
	// Local .env files are a development convenience; absence is not an
	// error.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := unmarshalConfigStrict(data, cfg); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshalConfigStrict(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid config: trailing JSON content")
		}
		return err
	}
	return nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Skill.Endpoint
}

func (c *Config) SetEndpoint(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Skill.Endpoint = url
}
