package tracing

import (
	"sort"

	"github.com/sarchlab/bblcache/blockcache"
)

// BlockCount is the number of hits and misses a single block has seen.
type BlockCount struct {
	Block  blockcache.BlockID `json:"block"`
	Hits   uint64             `json:"hits"`
	Misses uint64             `json:"misses"`
}

// Accesses returns the total number of executions of the block.
func (c BlockCount) Accesses() uint64 {
	return c.Hits + c.Misses
}

// BlockCounter collects per-block hit and miss counts.
type BlockCounter struct {
	counts map[blockcache.BlockID]*BlockCount
}

// NewBlockCounter creates a new BlockCounter.
func NewBlockCounter() *BlockCounter {
	return &BlockCounter{
		counts: make(map[blockcache.BlockID]*BlockCount),
	}
}

// TraceAccess counts the access.
func (c *BlockCounter) TraceAccess(_ string, access blockcache.Access) {
	count, ok := c.counts[access.Block]
	if !ok {
		count = &BlockCount{Block: access.Block}
		c.counts[access.Block] = count
	}

	if access.Outcome == blockcache.Hit {
		count.Hits++
	} else {
		count.Misses++
	}
}

// NumBlocks returns the number of distinct blocks seen.
func (c *BlockCounter) NumBlocks() int {
	return len(c.counts)
}

// Count returns the counts of one block.
func (c *BlockCounter) Count(id blockcache.BlockID) BlockCount {
	count, ok := c.counts[id]
	if !ok {
		return BlockCount{Block: id}
	}

	return *count
}

// Top returns the n most executed blocks. Ties are broken by the block ID.
// A non-positive n returns every block.
func (c *BlockCounter) Top(n int) []BlockCount {
	all := make([]BlockCount, 0, len(c.counts))
	for _, count := range c.counts {
		all = append(all, *count)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Accesses() != all[j].Accesses() {
			return all[i].Accesses() > all[j].Accesses()
		}

		return all[i].Block < all[j].Block
	})

	if n > 0 && n < len(all) {
		all = all[:n]
	}

	return all
}
