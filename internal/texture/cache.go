package texture

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
	"github.com/rs/zerolog/log"
)

// Cache keeps decoded external textures by absolute path so assets sharing
// a file decode it once. Cached images are shared and must not be modified.
// A nil *Cache caches nothing.
type Cache struct {
	mu  sync.Mutex
	lfu *tinylfu.T[string, *image.NRGBA]

	hits, misses atomic.Int64
}

// NewCache creates a cache holding up to entries images.
func NewCache(entries int) *Cache {
	entries = max(entries, 1)
	return &Cache{
		lfu: tinylfu.New[string, *image.NRGBA](entries, entries*10, xxhash.Sum64String,
			tinylfu.OnEvict(func(path string, _ *image.NRGBA) {
				log.Debug().Str("path", path).Msg("texture cache evict")
			})),
	}
}

func (c *Cache) get(path string) (*image.NRGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(path)
}

// Resolve returns the cached image for path, calling load on a miss.
// Failed loads are not cached.
func (c *Cache) Resolve(path string, load func() (*image.NRGBA, error)) (*image.NRGBA, error) {
	if c == nil {
		return load()
	}
	if img, ok := c.get(path); ok {
		c.hits.Add(1)
		log.Debug().Str("path", path).Msg("texture cache hit")
		return img, nil
	}
	c.misses.Add(1)

	// Two workers may load the same file concurrently; the later Add wins.
	img, err := load()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.lfu.Add(path, img)
	c.mu.Unlock()
	return img, nil
}

// Stats returns the hit and miss counts so far.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
