package blocktrace

import (
	"io"
	"math/rand"

	"github.com/sarchlab/bblcache/blockcache"
)

// BlockStride is the distance between consecutive synthetic block addresses.
const BlockStride = 0x10

// LoopSource emulates a loop body made of numBlocks consecutive blocks that
// runs iterations times.
type LoopSource struct {
	base       blockcache.BlockID
	numBlocks  int
	iterations int

	block     int
	iteration int
}

// NewLoopSource creates a LoopSource whose first block starts at base.
func NewLoopSource(base blockcache.BlockID, numBlocks, iterations int) *LoopSource {
	return &LoopSource{
		base:       base,
		numBlocks:  numBlocks,
		iterations: iterations,
	}
}

// Next returns the next block.
func (s *LoopSource) Next() (blockcache.BlockID, error) {
	if s.numBlocks <= 0 || s.iteration >= s.iterations {
		return 0, io.EOF
	}

	id := s.base + blockcache.BlockID(s.block*BlockStride)

	s.block++
	if s.block == s.numBlocks {
		s.block = 0
		s.iteration++
	}

	return id, nil
}

// RandomSource draws length blocks uniformly from a set of universe blocks.
// The same seed always yields the same trace.
type RandomSource struct {
	rng       *rand.Rand
	base      blockcache.BlockID
	universe  int
	remaining int
}

// NewRandomSource creates a RandomSource.
func NewRandomSource(
	seed int64,
	base blockcache.BlockID,
	universe, length int,
) *RandomSource {
	return &RandomSource{
		rng:       rand.New(rand.NewSource(seed)),
		base:      base,
		universe:  universe,
		remaining: length,
	}
}

// Next returns the next block.
func (s *RandomSource) Next() (blockcache.BlockID, error) {
	if s.universe <= 0 || s.remaining <= 0 {
		return 0, io.EOF
	}

	s.remaining--

	return s.base + blockcache.BlockID(s.rng.Intn(s.universe)*BlockStride), nil
}
