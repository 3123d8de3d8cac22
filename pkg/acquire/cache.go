package acquire

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache provides persistent, file-based caching of acquisition
// Results, keyed by URN. Adapted from the teacher's fetch.DiskCache: each
// entry is a JSON file named after the SHA-256 hash of its key, with
// writes replacing the file atomically via write-then-rename (spec §5).
type DiskCache struct {
	dir string
	ttl time.Duration
}

type cacheEntry struct {
	Result    Result    `json:"result"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewDiskCache creates (if needed) dir and returns a cache with entries
// valid for ttl.
func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &DiskCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached Result for urn, if present and unexpired.
func (cache *DiskCache) Get(urn string) (Result, bool) {
	data, err := os.ReadFile(cache.pathFor(urn))
	if err != nil {
		return Result{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Result{}, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(cache.pathFor(urn))
		return Result{}, false
	}

	return entry.Result, true
}

// Set stores result for urn, replacing any prior entry via a
// write-to-temp-then-rename so a crash mid-write never leaves a truncated
// cache file (spec §5).
func (cache *DiskCache) Set(urn string, result Result) error {
	entry := cacheEntry{Result: result, ExpiresAt: time.Now().Add(cache.ttl)}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache entry for %s: %w", urn, err)
	}

	finalPath := cache.pathFor(urn)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming cache file %s: %w", tmpPath, err)
	}
	return nil
}

func (cache *DiskCache) keyFor(urn string) string {
	hash := sha256.Sum256([]byte(urn))
	return hex.EncodeToString(hash[:])
}

func (cache *DiskCache) pathFor(urn string) string {
	return filepath.Join(cache.dir, cache.keyFor(urn)+".json")
}
