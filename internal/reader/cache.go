package reader

import (
	"fmt"
	"os"

	"github.com/maypok86/otter"
)

// defaultCacheBytes bounds the per-run source cache.
const defaultCacheBytes = 64 << 20

// SourceCache keeps file contents for the duration of one run so the primary
// and macro passes read each file from disk once.
type SourceCache struct {
	cache otter.Cache[string, []byte]
}

// NewSourceCache creates a cache holding at most maxBytes of source.
// maxBytes <= 0 selects the default bound.
func NewSourceCache(maxBytes int) (*SourceCache, error) {
	if maxBytes <= 0 {
		maxBytes = defaultCacheBytes
	}
	cache, err := otter.MustBuilder[string, []byte](maxBytes).
		Cost(func(key string, value []byte) uint32 {
			return uint32(len(key) + len(value))
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build source cache: %w", err)
	}
	return &SourceCache{cache: cache}, nil
}

// ReadFile returns the contents of path, from cache when possible.
// A nil cache reads straight from disk.
func (c *SourceCache) ReadFile(path string) ([]byte, error) {
	if c == nil {
		return os.ReadFile(path)
	}
	if data, ok := c.cache.Get(path); ok {
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(path, data)
	return data, nil
}

// Close releases the cache.
func (c *SourceCache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
