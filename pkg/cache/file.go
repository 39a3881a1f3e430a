package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores entries as JSON files under a directory, one file per
// key, hashed into two-character subdirectories to keep directories small.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating it if
// needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return &FileCache{dir: dir}, nil
}

type fileEntry struct {
	Entry
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Get retrieves an entry. Unreadable or expired files are removed and
// reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	var fe fileEntry
	if err := json.Unmarshal(data, &fe); err != nil {
		_ = os.Remove(path)
		return Entry{}, false, nil
	}
	if !fe.ExpiresAt.IsZero() && time.Now().After(fe.ExpiresAt) {
		_ = os.Remove(path)
		return Entry{}, false, nil
	}
	return fe.Entry, true, nil
}

// Set stores an entry.
func (c *FileCache) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	fe := fileEntry{Entry: entry}
	if ttl > 0 {
		fe.ExpiresAt = time.Now().Add(ttl)
	}
	data, err := json.Marshal(fe)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

// Delete removes an entry.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

// Close does nothing for the file backend.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
