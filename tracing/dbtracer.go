package tracing

import (
	"github.com/sarchlab/bblcache/blockcache"
	"github.com/sarchlab/bblcache/datarecording"
)

// Table names used by DBTracer.
const (
	AccessTableName  = "accesses"
	SummaryTableName = "summaries"
)

// AccessEntry is one row of the accesses table. SQLite integers are signed,
// so block IDs are stored as the int64 with the same bits.
type AccessEntry struct {
	Seq        uint64
	Cache      string
	Block      int64
	Outcome    string
	Evicted    int64
	HasEvicted bool
}

// BlockID returns the block of the access.
func (e AccessEntry) BlockID() blockcache.BlockID {
	return blockcache.BlockID(uint64(e.Block))
}

// SummaryEntry is one row of the summaries table, written when a run ends.
type SummaryEntry struct {
	RunID         string
	Cache         string
	Capacity      int
	Size          int
	TotalAccesses uint64
	Hits          uint64
	Misses        uint64
	Evictions     uint64
}

// A DBTracer stores accesses and run summaries through a data recorder.
type DBTracer struct {
	recorder       datarecording.DataRecorder
	runID          string
	recordAccesses bool
}

// NewDBTracer creates the tables and returns the tracer. If recordAccesses is
// false only summaries are stored.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	runID string,
	recordAccesses bool,
) *DBTracer {
	t := &DBTracer{
		recorder:       recorder,
		runID:          runID,
		recordAccesses: recordAccesses,
	}

	if recordAccesses {
		recorder.CreateTable(AccessTableName, AccessEntry{})
	}

	recorder.CreateTable(SummaryTableName, SummaryEntry{})

	return t
}

// TraceAccess buffers one access row.
func (t *DBTracer) TraceAccess(domain string, access blockcache.Access) {
	if !t.recordAccesses {
		return
	}

	entry := AccessEntry{
		Seq:     access.Seq,
		Cache:   domain,
		Block:   int64(access.Block),
		Outcome: access.Outcome.String(),
	}

	if access.HasEvicted {
		entry.Evicted = int64(access.Evicted)
		entry.HasEvicted = true
	}

	t.recorder.InsertData(AccessTableName, entry)
}

// Finish stores the final counters of a cache and flushes the recorder.
func (t *DBTracer) Finish(stats blockcache.Stats) {
	t.recorder.InsertData(SummaryTableName, SummaryEntry{
		RunID:         t.runID,
		Cache:         stats.Name,
		Capacity:      stats.Capacity,
		Size:          stats.Size,
		TotalAccesses: stats.TotalAccesses,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Evictions:     stats.Evictions,
	})

	t.recorder.Flush()
}
