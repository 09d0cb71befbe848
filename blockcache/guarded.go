package blockcache

import "sync"

// Guarded serializes access to a Cache so that a reader on another goroutine,
// such as a monitoring server, can take snapshots while a driver records.
type Guarded struct {
	lock  sync.Mutex
	cache *Cache
}

// NewGuarded wraps c. The caller must stop using c directly.
func NewGuarded(c *Cache) *Guarded {
	return &Guarded{cache: c}
}

// Record records an access under the lock.
func (g *Guarded) Record(id BlockID) Outcome {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.cache.Record(id)
}

// Stats takes a consistent snapshot of the counters.
func (g *Guarded) Stats() Stats {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.cache.Stats()
}

// Entries returns the cached IDs, most recently inserted first.
func (g *Guarded) Entries() []BlockID {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.cache.Entries()
}
