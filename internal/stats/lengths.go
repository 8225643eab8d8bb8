package stats

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jengzang/routesync/internal/models"
	"github.com/jengzang/routesync/internal/spatial"
)

// DefaultLengthCacheSize bounds the number of memoized route lengths
const DefaultLengthCacheSize = 4096

type lengthKey struct {
	id      uuid.UUID
	samples int
}

// LengthCache memoizes per-route path lengths keyed by route ID and sample
// count. Safe for concurrent use; both stores share one.
type LengthCache struct {
	cache *lru.Cache[lengthKey, float64]
}

// NewLengthCache creates a length cache holding at most size routes
func NewLengthCache(size int) (*LengthCache, error) {
	if size <= 0 {
		size = DefaultLengthCacheSize
	}
	c, err := lru.New[lengthKey, float64](size)
	if err != nil {
		return nil, err
	}
	return &LengthCache{cache: c}, nil
}

// Length returns the route length in meters
func (c *LengthCache) Length(r models.RouteRecord) float64 {
	if c == nil {
		return spatial.PathLength(r.Samples)
	}
	if len(r.Samples) < 2 {
		return 0
	}

	key := lengthKey{id: r.ID, samples: len(r.Samples)}
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	v := spatial.PathLength(r.Samples)
	c.cache.Add(key, v)
	return v
}

// Len returns the number of memoized lengths
func (c *LengthCache) Len() int {
	return c.cache.Len()
}
