package driver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value    string     `json:"value"`
	ExpireAt *time.Time `json:"expire_at,omitempty"`
}

// FileStore KeyValueDB implementation backed by a single JSON dotfile.
// Used for the client-side durable session token
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ KeyValueDB = &FileStore{}

// NewFileStore create a FileStore persisting to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Set implement KeyValueDB
func (fs *FileStore) Set(key string, value string) error {
	return fs.put(key, fileEntry{Value: value})
}

// SetEX implement KeyValueDB
func (fs *FileStore) SetEX(key string, value string, expiration time.Duration) error {
	deadline := time.Now().Add(expiration)
	return fs.put(key, fileEntry{Value: value, ExpireAt: &deadline})
}

// Get implement KeyValueDB
func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return "", err
	}
	entry, ok := entries[key]
	if !ok || expired(entry) {
		return "", ErrKeyNotFound
	}
	return entry.Value, nil
}

// Exists implement KeyValueDB
func (fs *FileStore) Exists(key string) (bool, error) {
	if _, err := fs.Get(key); err != nil {
		if err == ErrKeyNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete implement KeyValueDB
func (fs *FileStore) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	delete(entries, key)
	return fs.save(entries)
}

// Ping implement KeyValueDB
func (fs *FileStore) Ping() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, err := fs.load()
	return err
}

func (fs *FileStore) put(key string, entry fileEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entries, err := fs.load()
	if err != nil {
		return err
	}
	entries[key] = entry
	return fs.save(entries)
}

func (fs *FileStore) load() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// corrupted state file, start over
		return make(map[string]fileEntry), nil
	}
	return entries, nil
}

func (fs *FileStore) save(entries map[string]fileEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0o600)
}

func expired(entry fileEntry) bool {
	return entry.ExpireAt != nil && entry.ExpireAt.Before(time.Now())
}
