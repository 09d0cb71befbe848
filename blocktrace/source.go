// Package blocktrace feeds recorded or synthetic streams of executed basic
// blocks into a block cache.
package blocktrace

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/bblcache/blockcache"
)

// A Source yields the blocks of a trace in execution order. Next returns
// io.EOF once the trace is exhausted.
type Source interface {
	Next() (blockcache.BlockID, error)
}

// SliceSource replays a fixed list of blocks.
type SliceSource struct {
	ids []blockcache.BlockID
	pos int
}

// NewSliceSource creates a source that yields ids in order.
func NewSliceSource(ids ...blockcache.BlockID) *SliceSource {
	return &SliceSource{ids: ids}
}

// Next returns the next block.
func (s *SliceSource) Next() (blockcache.BlockID, error) {
	if s.pos >= len(s.ids) {
		return 0, io.EOF
	}

	id := s.ids[s.pos]
	s.pos++

	return id, nil
}

// ParseAddress parses a block address written in hexadecimal, with or without
// a 0x prefix.
func ParseAddress(s string) (blockcache.BlockID, error) {
	s = strings.TrimSpace(s)
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block address %q", s)
	}

	return blockcache.BlockID(v), nil
}

// ReadAll drains a source.
func ReadAll(src Source) ([]blockcache.BlockID, error) {
	var ids []blockcache.BlockID

	for {
		id, err := src.Next()
		if err == io.EOF {
			return ids, nil
		}

		if err != nil {
			return ids, err
		}

		ids = append(ids, id)
	}
}
