package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"umchat/pkg/config"
	"umchat/pkg/dialog"
	"umchat/pkg/logger"
	"umchat/pkg/skill"
	"umchat/pkg/storage"
	"umchat/pkg/transport"
)

func configPath() string {
	if globalConfigPathOverride != "" {
		return globalConfigPathOverride
	}
	return filepath.Join(config.GetConfigDir(), "config.json")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return nil, err
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %v", errs[0])
	}
	if cfg.Logging.Enabled {
		path := filepath.Join(cfg.Logging.Dir, cfg.Logging.Filename)
		if err := logger.EnableFileLogging(path, cfg.Logging.MaxSizeMB, cfg.Logging.RetentionDays); err != nil {
			logger.WarnCF("cli", "File logging unavailable", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}
	return cfg, nil
}

func openStore(cfg *config.Config, userID string) (dialog.Store, error) {
	return storage.Open(storage.Options{
		Backend:    cfg.History.Backend,
		Dir:        cfg.History.Dir,
		SQLitePath: cfg.History.SQLitePath,
		RedisURL:   cfg.History.RedisURL,
		UserID:     userID,
		Limit:      cfg.History.Limit,
	})
}

func newSession(cfg *config.Config) (*dialog.Session, error) {
	userID, err := storage.LoadOrCreateUserID(cfg.History.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user id: %w", err)
	}

	store, err := openStore(cfg, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.History.Backend, err)
	}

	proto := skill.NewWebhook(
		cfg.Skill.SkillID,
		cfg.Skill.SessionID,
		cfg.Skill.ClientID,
		cfg.Skill.Locale,
		cfg.Skill.Timezone,
	)
	if cfg.Skill.CDNBase != "" {
		proto.CDNBase = cfg.Skill.CDNBase
	}

	return dialog.NewSession(dialog.Options{
		Endpoint:  cfg.Skill.Endpoint,
		UserID:    userID,
		Protocol:  proto,
		Client:    transport.NewClient(time.Duration(cfg.Request.TimeoutSec) * time.Second),
		Store:     store,
		RateEvery: time.Duration(cfg.Request.RateEveryMS) * time.Millisecond,
		RateBurst: cfg.Request.RateBurst,
	}), nil
}

func normalizeCLIArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := []string{args[0]}
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--debug" || arg == "-d" {
			continue
		}
		if arg == "--config" {
			if i+1 < len(args) {
				i++
			}
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			continue
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

func detectConfigPathFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" && i+1 < len(args) {
			return strings.TrimSpace(args[i+1])
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimSpace(strings.TrimPrefix(arg, "--config="))
		}
	}
	return ""
}
