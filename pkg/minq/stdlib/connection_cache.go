package stdlib

import (
	"database/sql"
	"sync"
	"time"
)

// connectionCache keeps open pools keyed by driver and DSN so scripts that
// call db.open repeatedly share one pool. Entries expire after ttl and are
// dropped when their health check fails.
type connectionCache[T any] struct {
	mu          sync.Mutex
	conns       map[string]*cachedConn[T]
	maxSize     int
	ttl         time.Duration
	healthCheck func(T) error
	closeFunc   func(T) error
}

type cachedConn[T any] struct {
	conn      T
	createdAt time.Time
	lastUsed  time.Time
}

func newConnectionCache[T any](maxSize int, ttl time.Duration, healthCheck, closeFunc func(T) error) *connectionCache[T] {
	return &connectionCache[T]{
		conns:       make(map[string]*cachedConn[T]),
		maxSize:     maxSize,
		ttl:         ttl,
		healthCheck: healthCheck,
		closeFunc:   closeFunc,
	}
}

// get returns a live cached connection. Expired or unhealthy entries are
// closed and evicted.
func (c *connectionCache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	cached, exists := c.conns[key]
	if !exists {
		return zero, false
	}

	now := time.Now()
	if now.Sub(cached.createdAt) > c.ttl {
		c.evict(key)
		return zero, false
	}
	if c.healthCheck != nil {
		if err := c.healthCheck(cached.conn); err != nil {
			c.evict(key)
			return zero, false
		}
	}

	cached.lastUsed = now
	return cached.conn, true
}

// put stores conn, evicting the least recently used entry at capacity.
func (c *connectionCache[T]) put(key string, conn T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.conns[key]; !exists && len(c.conns) >= c.maxSize {
		c.evictLRU()
	}
	now := time.Now()
	c.conns[key] = &cachedConn[T]{conn: conn, createdAt: now, lastUsed: now}
}

// remove closes and forgets the entry for key.
func (c *connectionCache[T]) remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evict(key)
}

// evict closes and deletes key. The caller holds the lock.
func (c *connectionCache[T]) evict(key string) error {
	cached, exists := c.conns[key]
	if !exists {
		return nil
	}
	delete(c.conns, key)
	return c.closeFunc(cached.conn)
}

func (c *connectionCache[T]) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	for key, cached := range c.conns {
		if oldestKey == "" || cached.lastUsed.Before(oldestTime) {
			oldestKey = key
			oldestTime = cached.lastUsed
		}
	}
	if oldestKey != "" {
		// close errors on eviction are not actionable
		_ = c.evict(oldestKey)
	}
}

// closeAll closes every cached connection and returns the first error.
func (c *connectionCache[T]) closeAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for key := range c.conns {
		if err := c.evict(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *connectionCache[T]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

var dbCache = newConnectionCache[*sql.DB](
	100,
	30*time.Minute,
	func(db *sql.DB) error { return db.Ping() },
	func(db *sql.DB) error { return db.Close() },
)

// CloseConnections closes every pooled database connection. Hosts call it
// on shutdown.
func CloseConnections() error {
	return dbCache.closeAll()
}
