// Package blockcache models a bounded cache over the identities of executed
// basic blocks and keeps exact hit and miss accounting.
//
// Entries are evicted strictly in insertion order. A hit never promotes an
// entry, so the cache is not an LRU: the oldest inserted block is the one that
// leaves, regardless of how recently it was hit.
package blockcache

import (
	"errors"
	"fmt"

	"github.com/sarchlab/bblcache/hooking"
)

// DefaultCapacity is the number of blocks a cache holds unless configured
// otherwise.
const DefaultCapacity = 50

// ErrInvalidCapacity is returned when a cache is constructed with a capacity
// that is not positive.
var ErrInvalidCapacity = errors.New("blockcache: capacity must be positive")

// BlockID identifies a basic block, normally by its start address. Only
// equality is meaningful.
type BlockID uint64

func (id BlockID) String() string {
	return fmt.Sprintf("0x%x", uint64(id))
}

// Outcome tells whether an access hit or missed.
type Outcome int

// Outcomes of a recorded access.
const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	if o == Hit {
		return "hit"
	}

	return "miss"
}

// Access describes one processed Record call. It is the item carried by
// HookPosAccess.
type Access struct {
	// Seq is the 1-based position of the access in the stream.
	Seq     uint64
	Block   BlockID
	Outcome Outcome

	// Evicted is only meaningful when HasEvicted is set.
	Evicted    BlockID
	HasEvicted bool
}

// HookPosAccess fires after every access has been fully accounted. The hook
// item is an Access.
var HookPosAccess = &hooking.HookPos{Name: "BlockCacheAccess"}

// HookPosEvict fires when an entry leaves the cache. The hook item is the
// evicted BlockID and the detail is the Access that caused it.
var HookPosEvict = &hooking.HookPos{Name: "BlockCacheEvict"}

// Cache is a bounded, insertion-ordered set of block IDs.
//
// A Cache is not safe for concurrent use. It expects a single stream of
// Record calls in program order; callers that feed it from several goroutines
// must serialize access themselves, for example with Guarded.
type Cache struct {
	*hooking.HookableBase

	name     string
	capacity int
	entries  entryStore

	totalAccesses uint64
	hits          uint64
	misses        uint64
	evictions     uint64
}

// An Option customizes a cache at construction.
type Option func(c *Cache)

// WithName sets the name used to label the cache in hooks and reports.
func WithName(name string) Option {
	return func(c *Cache) {
		c.name = name
	}
}

// WithIndex backs the membership test with a hash index instead of a linear
// scan. Use it when the capacity reaches the thousands. Eviction order is
// unaffected.
func WithIndex() Option {
	return func(c *Cache) {
		c.entries = newIndexedStore(c.capacity)
	}
}

// New creates an empty cache holding at most capacity blocks. A capacity that
// is zero or negative is rejected with ErrInvalidCapacity.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	c := &Cache{
		HookableBase: hooking.NewHookableBase(),
		name:         "BlockCache",
		capacity:     capacity,
		entries:      newScanStore(capacity),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustNew is like New but panics if the capacity is invalid.
func MustNew(capacity int, opts ...Option) *Cache {
	c, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// Record accounts one execution of the block id.
//
// If the block is present the access is a hit and the entry order is left
// untouched. Otherwise the access is a miss, the block becomes the most
// recently inserted entry and, if that overflows the capacity, the least
// recently inserted entry is removed.
func (c *Cache) Record(id BlockID) Outcome {
	c.totalAccesses++

	access := Access{Seq: c.totalAccesses, Block: id}

	if c.entries.contains(id) {
		c.hits++
		access.Outcome = Hit
	} else {
		c.misses++
		access.Outcome = Miss
		access.Evicted, access.HasEvicted = c.entries.push(id)
	}

	if access.HasEvicted {
		c.evictions++
		c.invoke(HookPosEvict, access.Evicted, access)
	}

	c.invoke(HookPosAccess, access, nil)

	return access.Outcome
}

func (c *Cache) invoke(pos *hooking.HookPos, item, detail any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

// Contains reports whether id is cached. It does not count as an access.
func (c *Cache) Contains(id BlockID) bool {
	return c.entries.contains(id)
}

// Entries returns a copy of the cached IDs, most recently inserted first.
func (c *Cache) Entries() []BlockID {
	return c.entries.list()
}

// Size returns the number of cached blocks.
func (c *Cache) Size() int {
	return c.entries.len()
}

// Capacity returns the maximum number of cached blocks.
func (c *Cache) Capacity() int {
	return c.capacity
}

// TotalAccesses returns the number of Record calls so far.
func (c *Cache) TotalAccesses() uint64 {
	return c.totalAccesses
}

// Hits returns the number of accesses that found their block cached.
func (c *Cache) Hits() uint64 {
	return c.hits
}

// Misses returns the number of accesses that inserted their block.
func (c *Cache) Misses() uint64 {
	return c.misses
}

// Evictions returns the number of entries pushed out by later misses.
func (c *Cache) Evictions() uint64 {
	return c.evictions
}

// Stats takes a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Name:          c.name,
		Capacity:      c.capacity,
		Size:          c.entries.len(),
		TotalAccesses: c.totalAccesses,
		Hits:          c.hits,
		Misses:        c.misses,
		Evictions:     c.evictions,
	}
}
