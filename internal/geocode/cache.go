package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const (
	cacheFileName = "geocode_cache.json"
	cacheVersion  = 1

	// DefaultCacheMaxAge is how long a cached lookup is trusted.
	DefaultCacheMaxAge = 30 * 24 * time.Hour
)

type cacheFile struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

type cacheEntry struct {
	Postcode  string    `json:"postcode"`
	Address   string    `json:"address"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Cache is a Geocoder that remembers successful lookups in a JSON file, so
// repeated batches over the same photos do not query the provider again.
// Failed lookups are not cached.
type Cache struct {
	next   Geocoder
	path   string
	maxAge time.Duration
	now    func() time.Time

	mu    sync.Mutex
	file  *cacheFile
	dirty bool
}

// DefaultCachePath returns the cache location under the user cache directory.
func DefaultCachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("determine user cache directory: %w", err)
	}
	return filepath.Join(dir, "pothole-report", cacheFileName), nil
}

// OpenCache loads the cache at path in front of next. A missing file or one
// written by another version starts empty.
func OpenCache(path string, next Geocoder) (*Cache, error) {
	c := &Cache{
		next:   next,
		path:   path,
		maxAge: DefaultCacheMaxAge,
		now:    time.Now,
		file:   newCacheFile(),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geocode cache: %w", err)
	}

	file := newCacheFile()
	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("unmarshal geocode cache: %w", err)
	}
	if file.Version == cacheVersion && file.Entries != nil {
		c.file = file
	}
	return c, nil
}

func newCacheFile() *cacheFile {
	return &cacheFile{
		Version: cacheVersion,
		Entries: make(map[string]cacheEntry),
	}
}

func cacheKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lon, 'f', 6, 64)
}

// Reverse answers from the cache when a fresh entry exists.
func (c *Cache) Reverse(ctx context.Context, lat, lon float64) (Result, bool) {
	key := cacheKey(lat, lon)

	c.mu.Lock()
	entry, ok := c.file.Entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.FetchedAt) < c.maxAge {
		return Result{Postcode: entry.Postcode, Address: entry.Address}, true
	}

	res, found := c.next.Reverse(ctx, lat, lon)
	if !found {
		return res, false
	}

	c.mu.Lock()
	c.file.Entries[key] = cacheEntry{Postcode: res.Postcode, Address: res.Address, FetchedAt: c.now()}
	c.dirty = true
	c.mu.Unlock()
	return res, true
}

// Prune drops entries older than the maximum age.
func (c *Cache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.file.Entries {
		if c.now().Sub(entry.FetchedAt) >= c.maxAge {
			delete(c.file.Entries, key)
			c.dirty = true
		}
	}
}

// Save writes the cache back to disk if it changed.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(c.file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal geocode cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write geocode cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("replace geocode cache: %w", err)
	}
	c.dirty = false
	return nil
}
