package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"umchat/pkg/dialog"
	"umchat/pkg/logger"
)

const (
	entriesFile   = "cards.json"
	userStateFile = "user_state.json"
)

// FileStore keeps the history and the user state as JSON files under a
// storage directory. Corrupt or missing files always load as empty.
type FileStore struct {
	dir   string
	limit int
	mu    sync.Mutex
}

func NewFileStore(dir string, limit int) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, limit: limit}, nil
}

func (fs *FileStore) LoadEntries() ([]dialog.DisplayEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(fs.dir, entriesFile))
	if err != nil {
		return nil, nil
	}
	var entries []dialog.DisplayEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt storage is treated as absent, never surfaced.
		logger.DebugCF("storage", "Discarding corrupt history file", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return nil, nil
	}
	return entries, nil
}

func (fs *FileStore) SaveEntries(entries []dialog.DisplayEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.Marshal(clampEntries(entries, fs.limit))
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(fs.dir, entriesFile), data)
}

func (fs *FileStore) ClearEntries() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return removeIfPresent(filepath.Join(fs.dir, entriesFile))
}

func (fs *FileStore) LoadUserState() (json.RawMessage, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(fs.dir, userStateFile))
	if err != nil {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, nil
	}
	return data, nil
}

func (fs *FileStore) SaveUserState(state json.RawMessage) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if len(state) == 0 {
		return removeIfPresent(filepath.Join(fs.dir, userStateFile))
	}
	return writeFileAtomic(filepath.Join(fs.dir, userStateFile), state)
}

func (fs *FileStore) ClearUserState() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return removeIfPresent(filepath.Join(fs.dir, userStateFile))
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func removeIfPresent(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
