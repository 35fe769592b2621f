package driver

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value    string
	expireAt time.Time // zero means no expiry
}

// MemoryStore in-process KeyValueDB, used by the dev server and tests
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ KeyValueDB = &MemoryStore{}

// NewMemoryStore create an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Set implement KeyValueDB
func (ms *MemoryStore) Set(key string, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = memoryEntry{value: value}
	return nil
}

// SetEX implement KeyValueDB
func (ms *MemoryStore) SetEX(key string, value string, expiration time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries[key] = memoryEntry{value: value, expireAt: time.Now().Add(expiration)}
	return nil
}

// Get implement KeyValueDB
func (ms *MemoryStore) Get(key string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	entry, ok := ms.entries[key]
	if !ok || memoryExpired(entry) {
		return "", ErrKeyNotFound
	}
	return entry.value, nil
}

// Exists implement KeyValueDB
func (ms *MemoryStore) Exists(key string) (bool, error) {
	_, err := ms.Get(key)
	if err == ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// Delete implement KeyValueDB
func (ms *MemoryStore) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, key)
	return nil
}

// Ping implement KeyValueDB
func (ms *MemoryStore) Ping() error {
	return nil
}

func memoryExpired(entry memoryEntry) bool {
	return !entry.expireAt.IsZero() && entry.expireAt.Before(time.Now())
}
