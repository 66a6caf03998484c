package config

import (
	"fmt"
	"net/url"
)

// Validate returns configuration problems found in cfg.
// It does not mutate cfg.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	if cfg.Skill.Endpoint != "" {
		if _, err := url.ParseRequestURI(cfg.Skill.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("skill.endpoint is not a valid URL: %v", err))
		}
	}
	if cfg.Request.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("request.timeout_sec must be > 0"))
	}
	if cfg.Request.RateEveryMS < 0 {
		errs = append(errs, fmt.Errorf("request.rate_every_ms must be >= 0"))
	}

	if cfg.History.Limit <= 0 {
		errs = append(errs, fmt.Errorf("history.limit must be > 0"))
	}
	switch cfg.History.Backend {
	case "", "file", "sqlite", "redis":
	default:
		errs = append(errs, fmt.Errorf("history.backend must be one of: file, sqlite, redis"))
	}
	if cfg.History.Backend == "redis" && cfg.History.RedisURL == "" {
		errs = append(errs, fmt.Errorf("history.redis_url is required when history.backend=redis"))
	}

	if cfg.Speech.Enabled && cfg.Speech.BridgeURL == "" {
		errs = append(errs, fmt.Errorf("speech.bridge_url is required when speech.enabled=true"))
	}

	if cfg.Gateway.Port <= 0 || cfg.Gateway.Port > 65535 {
		errs = append(errs, fmt.Errorf("gateway.port must be in 1..65535"))
	}

	if cfg.Logging.Enabled {
		if cfg.Logging.Dir == "" {
			errs = append(errs, fmt.Errorf("logging.dir is required when logging.enabled=true"))
		}
		if cfg.Logging.Filename == "" {
			errs = append(errs, fmt.Errorf("logging.filename is required when logging.enabled=true"))
		}
		if cfg.Logging.MaxSizeMB <= 0 {
			errs = append(errs, fmt.Errorf("logging.max_size_mb must be > 0"))
		}
		if cfg.Logging.RetentionDays <= 0 {
			errs = append(errs, fmt.Errorf("logging.retention_days must be > 0"))
		}
	}

	return errs
}
