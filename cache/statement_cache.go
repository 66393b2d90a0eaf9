package cache

import (
	"context"
	"database/sql"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedStmt struct {
	stmt    *sql.Stmt
	users   int
	evicted bool
}

// StatementCache keeps prepared statements keyed by SQL fingerprint. An
// evicted statement is closed once the last caller holding it releases it,
// so eviction never closes a statement that is still executing.
type StatementCache struct {
	mu    sync.Mutex
	cache *lru.Cache[uint64, *cachedStmt]
}

func NewStatementCache(size int) *StatementCache {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	s := &StatementCache{}
	s.cache, _ = lru.NewWithEvict(size, s.onEvict)
	return s
}

// onEvict only runs from cache calls made with mu held.
func (s *StatementCache) onEvict(_ uint64, e *cachedStmt) {
	e.evicted = true
	if e.users == 0 {
		_ = e.stmt.Close()
	}
}

func (s *StatementCache) Len() int {
	return s.cache.Len()
}

// Acquire returns the statement for key, preparing query on a miss. The
// caller must call release once it no longer uses the statement. Rows
// obtained from the statement stay valid after release.
func (s *StatementCache) Acquire(ctx context.Context, key uint64, db *sql.DB, query string) (stmt *sql.Stmt, release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Get(key)
	if !ok {
		prepared, err := db.PrepareContext(ctx, query)
		if err != nil {
			return nil, nil, err
		}
		e = &cachedStmt{stmt: prepared}
		s.cache.Add(key, e)
	}

	e.users++
	return e.stmt, func() { s.release(e) }, nil
}

func (s *StatementCache) release(e *cachedStmt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.users--
	if e.evicted && e.users == 0 {
		_ = e.stmt.Close()
	}
}

// Close evicts everything. Statements in use are closed on release.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
	return nil
}
