package storage

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const userIDFile = "user_id"

// GenerateUserID produces the per-install identity in the widget's
// historical randInt/epochMillis/randInt format.
func GenerateUserID() string {
	return fmt.Sprintf("%d/%d%d", rand.Intn(1_000_000), time.Now().UnixMilli(), rand.Intn(1000))
}

// LoadOrCreateUserID returns the cached per-install user id, generating
// and caching one on first use. It is reused until explicitly cleared.
func LoadOrCreateUserID(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, userIDFile)

	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := GenerateUserID()
	if err := os.WriteFile(path, []byte(id), 0644); err != nil {
		return "", err
	}
	return id, nil
}

// ClearUserID drops the cached identity so the next start generates a
// fresh one.
func ClearUserID(dir string) error {
	return removeIfPresent(filepath.Join(dir, userIDFile))
}
