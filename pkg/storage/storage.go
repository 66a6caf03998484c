// UMChat - embeddable skill chat core
// License: MIT

package storage

import (
	"fmt"

	"umchat/pkg/dialog"
	"umchat/pkg/logger"
)

// DefaultLimit bounds the persisted history window.
const DefaultLimit = 100

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Options struct {
	Backend string
	// Dir is the file backend's storage directory.
	Dir string
	// SQLitePath is the sqlite backend's database file.
	SQLitePath string
	// RedisURL is the redis backend's connection URL.
	RedisURL string
	// UserID namespaces shared backends (redis).
	UserID string
	// Limit overrides DefaultLimit when positive.
	Limit int
}

// Open builds the configured persistence backend.
func Open(opts Options) (dialog.Store, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	logger.DebugCF("storage", "Opening store", map[string]interface{}{
		logger.FieldBackend: opts.Backend,
	})
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Dir, limit)
	case BackendSQLite:
		return NewSQLiteStore(opts.SQLitePath, limit)
	case BackendRedis:
		return NewRedisStore(opts.RedisURL, opts.UserID, limit)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// clampEntries keeps the most recent limit entries, preserving order.
func clampEntries(entries []dialog.DisplayEntry, limit int) []dialog.DisplayEntry {
	if limit > 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}
