package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheGetSet(t *testing.T) {
	c := NewQueryCache(2)

	_, ok := c.GetSQL(1)
	assert.False(t, ok)

	c.SetSQL(1, &CachedQuery{SQL: "SELECT 1", NumParams: 0})
	got, ok := c.GetSQL(1)
	require.True(t, ok)
	assert.Equal(t, "SELECT 1", got.SQL)
}

func TestQueryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewQueryCache(2)
	c.SetSQL(1, &CachedQuery{SQL: "a"})
	c.SetSQL(2, &CachedQuery{SQL: "b"})
	_, _ = c.GetSQL(1)
	c.SetSQL(3, &CachedQuery{SQL: "c"})

	_, ok := c.GetSQL(2)
	assert.False(t, ok)
	_, ok = c.GetSQL(1)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestExpiringQueryCache(t *testing.T) {
	c := NewExpiringQueryCache(4, 20*time.Millisecond)
	c.SetSQL(1, &CachedQuery{SQL: "a"})

	_, ok := c.GetSQL(1)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.GetSQL(1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNewPicksVariant(t *testing.T) {
	assert.IsType(t, &lruQueryCache{}, New(0, 0))
	assert.IsType(t, &expiringQueryCache{}, New(0, time.Minute))
}

func TestPurge(t *testing.T) {
	c := NewQueryCache(0)
	c.SetSQL(1, &CachedQuery{SQL: "a"})
	c.Purge()
	assert.Equal(t, 0, c.Len())
}
