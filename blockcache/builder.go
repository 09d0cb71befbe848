package blockcache

import "github.com/sarchlab/bblcache/hooking"

// Builder can build block caches.
type Builder struct {
	capacity int
	indexed  bool
	hooks    []hooking.Hook
}

// MakeBuilder creates a new builder with the default capacity.
func MakeBuilder() Builder {
	return Builder{
		capacity: DefaultCapacity,
	}
}

// WithCapacity sets the maximum number of blocks the cache keeps.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithIndex selects the hash-indexed membership test.
func (b Builder) WithIndex(indexed bool) Builder {
	b.indexed = indexed
	return b
}

// WithHook attaches a hook to every cache built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates a cache with the given name. It panics if the configured
// capacity is not positive.
func (b Builder) Build(name string) *Cache {
	opts := []Option{WithName(name)}
	if b.indexed {
		opts = append(opts, WithIndex())
	}

	c := MustNew(b.capacity, opts...)

	for _, hook := range b.hooks {
		c.AcceptHook(hook)
	}

	return c
}
