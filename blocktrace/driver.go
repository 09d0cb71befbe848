package blocktrace

import (
	"context"
	"fmt"
	"io"

	"github.com/sarchlab/bblcache/blockcache"
)

const checkInterval = 1024

// A Recorder accepts the blocks a driver replays. Both blockcache.Cache and
// blockcache.Guarded are Recorders.
type Recorder interface {
	Record(id blockcache.BlockID) blockcache.Outcome
}

// A ProgressTracker is told how many blocks have been replayed.
type ProgressTracker interface {
	IncrementFinished(amount uint64)
}

// Driver replays a trace into a recorder, one Record call per executed block,
// in trace order and from a single goroutine.
type Driver struct {
	limit    uint64
	progress ProgressTracker
}

// NewDriver creates a driver without a limit.
func NewDriver() *Driver {
	return &Driver{}
}

// WithLimit stops the replay after n blocks. Zero means no limit.
func (d *Driver) WithLimit(n uint64) *Driver {
	d.limit = n
	return d
}

// WithProgress reports the replay progress to p.
func (d *Driver) WithProgress(p ProgressTracker) *Driver {
	d.progress = p
	return d
}

// Run replays src into rec until the source is exhausted, the limit is
// reached, or ctx is cancelled. It returns the number of blocks replayed.
func (d *Driver) Run(
	ctx context.Context,
	src Source,
	rec Recorder,
) (uint64, error) {
	var n, reported uint64

	defer func() {
		d.report(n - reported)
	}()

	for d.limit == 0 || n < d.limit {
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}

			d.report(n - reported)
			reported = n
		}

		id, err := src.Next()
		if err == io.EOF {
			return n, nil
		}

		if err != nil {
			return n, fmt.Errorf("reading block %d: %w", n+1, err)
		}

		rec.Record(id)
		n++
	}

	return n, nil
}

func (d *Driver) report(amount uint64) {
	if d.progress == nil || amount == 0 {
		return
	}

	d.progress.IncrementFinished(amount)
}
