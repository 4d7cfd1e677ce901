package datasource

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache keeps fetched documents on disk, one JSON file per key, expiring
// after ttl. A zero ttl disables it.
type Cache struct {
	cacheDir string
	ttl      time.Duration
	mu       sync.RWMutex
}

// CacheEntry represents a cached item
type CacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCache creates the cache directory if needed.
func NewCache(cacheDir string, ttl time.Duration) (*Cache, error) {
	if cacheDir == "" {
		cacheDir = "cache/screener"
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", cacheDir, err)
	}
	return &Cache{
		cacheDir: cacheDir,
		ttl:      ttl,
	}, nil
}

// Get retrieves an unexpired item. Expired files are removed.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	cacheFile := c.getCacheFilePath(key)
	raw, err := os.ReadFile(cacheFile)
	c.mu.RUnlock()
	if err != nil {
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Key != key {
		return nil, false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		c.mu.Lock()
		os.Remove(cacheFile)
		c.mu.Unlock()
		return nil, false
	}

	return entry.Data, true
}

// Set stores an item in cache
func (c *Cache) Set(key string, data []byte) error {
	if c == nil || c.ttl <= 0 {
		return nil
	}

	entryData, err := json.Marshal(CacheEntry{
		Key:       key,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return os.WriteFile(c.getCacheFilePath(key), entryData, 0644)
}

// Clear removes all cache entries but keeps the directory.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(c.cacheDir); err != nil {
		return err
	}
	return os.MkdirAll(c.cacheDir, 0755)
}

// CleanupExpired removes expired entries and returns how many went.
func (c *Cache) CleanupExpired() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > c.ttl {
			if os.Remove(filepath.Join(c.cacheDir, entry.Name())) == nil {
				removed++
			}
		}
	}

	return removed, nil
}

func (c *Cache) getCacheFilePath(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(c.cacheDir, fmt.Sprintf("%x.json", hash))
}

// GetOrFetch retrieves from cache or fetches using fetchFn. A failed Set
// does not fail the fetch.
func (c *Cache) GetOrFetch(key string, fetchFn func() ([]byte, error)) ([]byte, bool, error) {
	if data, ok := c.Get(key); ok {
		return data, true, nil
	}

	data, err := fetchFn()
	if err != nil {
		return nil, false, err
	}

	_ = c.Set(key, data)
	return data, false, nil
}

// MakeKey creates a cache key from parts
func MakeKey(parts ...string) string {
	return strings.Join(parts, ":")
}
