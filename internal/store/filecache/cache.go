package filecache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultTTL is how long a cached entry stays valid.
const DefaultTTL = 5 * time.Minute

// Cache is a file-backed key/value store with TTL expiry, used as an
// opportunistic read-through for list queries. One file per key under
// the cache directory. Concurrent writers from multiple process
// instances are not coordinated; last write wins at the file level,
// which is fine for a single interactive user.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// entry is the on-disk format: the value plus its write time.
type entry struct {
	Timestamp int64           `json:"timestamp"`
	Value     json.RawMessage `json:"value"`
}

// New creates a cache rooted at dir, creating the directory if
// needed. A zero ttl means DefaultTTL.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// DefaultDir returns ~/.cache/rdash, or a path under the OS temp dir
// when the home directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "rdash-cache")
	}
	return filepath.Join(home, ".cache", "rdash")
}

// Get returns the cached value for key, or ok=false on a miss.
// Expired and corrupted entries are purged on read rather than
// surfaced as errors.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Timestamp == 0 {
		_ = os.Remove(path)
		return nil, false
	}

	if c.now().Sub(time.Unix(e.Timestamp, 0)) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}

	return e.Value, true
}

// Set stores value under key. The write goes through a temp file and
// rename so readers never see a torn entry.
func (c *Cache) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	data, err := json.Marshal(entry{
		Timestamp: c.now().Unix(),
		Value:     raw,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Clear removes the entry for key, if present.
func (c *Cache) Clear(key string) {
	_ = os.Remove(c.path(key))
}

// ClearAll removes every cache entry.
func (c *Cache) ClearAll() {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, SanitizeKey(key)+".json")
}
