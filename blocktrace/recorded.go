package blocktrace

import (
	"context"
	"io"

	"github.com/sarchlab/bblcache/blockcache"
	"github.com/sarchlab/bblcache/datarecording"
	"github.com/sarchlab/bblcache/tracing"
)

const recordedPageSize = 10000

// RecordedSource replays the accesses stored by a previous run that recorded
// them with tracing.DBTracer.
type RecordedSource struct {
	ctx    context.Context
	reader datarecording.DataReader
	params datarecording.QueryParams

	page []any
	pos  int
	done bool
}

// NewRecordedSource creates a source over the accesses table. If cache is not
// empty only the accesses of that cache are replayed.
func NewRecordedSource(
	ctx context.Context,
	reader datarecording.DataReader,
	cache string,
) *RecordedSource {
	reader.MapTable(tracing.AccessTableName, tracing.AccessEntry{})

	params := datarecording.QueryParams{
		OrderBy: "Seq ASC",
		Limit:   recordedPageSize,
	}

	if cache != "" {
		params.Where = "Cache = ?"
		params.Args = []any{cache}
	}

	return &RecordedSource{
		ctx:    ctx,
		reader: reader,
		params: params,
	}
}

// Next returns the next block.
func (s *RecordedSource) Next() (blockcache.BlockID, error) {
	if s.pos >= len(s.page) {
		if err := s.fetch(); err != nil {
			return 0, err
		}
	}

	entry := s.page[s.pos].(*tracing.AccessEntry)
	s.pos++

	return entry.BlockID(), nil
}

func (s *RecordedSource) fetch() error {
	if s.done {
		return io.EOF
	}

	page, _, err := s.reader.Query(s.ctx, tracing.AccessTableName, s.params)
	if err != nil {
		return err
	}

	if len(page) < s.params.Limit {
		s.done = true
	}

	if len(page) == 0 {
		return io.EOF
	}

	s.page = page
	s.pos = 0
	s.params.Offset += len(page)

	return nil
}
