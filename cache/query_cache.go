package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultQueryCacheSize = 1024

// CachedQuery is finalized SQL text for one fragment shape. NumParams
// guards against fingerprint collisions.
type CachedQuery struct {
	SQL       string
	NumParams int
}

type QueryCache interface {
	GetSQL(fingerprint uint64) (*CachedQuery, bool)
	SetSQL(fingerprint uint64, q *CachedQuery)
	Len() int
	Purge()
}

type lruQueryCache struct {
	data *lru.Cache[uint64, *CachedQuery]
}

// NewQueryCache returns a size-bounded LRU cache. Non-positive sizes use
// DefaultQueryCacheSize.
func NewQueryCache(size int) QueryCache {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	data, _ := lru.New[uint64, *CachedQuery](size)
	return &lruQueryCache{data: data}
}

func (c *lruQueryCache) GetSQL(f uint64) (*CachedQuery, bool) { return c.data.Get(f) }
func (c *lruQueryCache) SetSQL(f uint64, q *CachedQuery)      { c.data.Add(f, q) }
func (c *lruQueryCache) Len() int                             { return c.data.Len() }
func (c *lruQueryCache) Purge()                               { c.data.Purge() }

type expiringQueryCache struct {
	data *expirable.LRU[uint64, *CachedQuery]
}

// NewExpiringQueryCache is NewQueryCache with entries dropped after ttl.
func NewExpiringQueryCache(size int, ttl time.Duration) QueryCache {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	return &expiringQueryCache{data: expirable.NewLRU[uint64, *CachedQuery](size, nil, ttl)}
}

func (c *expiringQueryCache) GetSQL(f uint64) (*CachedQuery, bool) { return c.data.Get(f) }
func (c *expiringQueryCache) SetSQL(f uint64, q *CachedQuery)      { c.data.Add(f, q) }
func (c *expiringQueryCache) Len() int                             { return c.data.Len() }
func (c *expiringQueryCache) Purge()                               { c.data.Purge() }

// New picks the expiring variant when ttl is positive.
func New(size int, ttl time.Duration) QueryCache {
	if ttl > 0 {
		return NewExpiringQueryCache(size, ttl)
	}
	return NewQueryCache(size)
}
