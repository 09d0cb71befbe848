package blocktrace

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sarchlab/bblcache/blockcache"
)

// DefaultCSVColumn is the column CSVSource reads unless told otherwise.
const DefaultCSVColumn = "address"

// CSVSource reads block addresses from one column of a CSV file with a header
// row.
type CSVSource struct {
	reader *csv.Reader
	column string
	index  int
}

// NewCSVSource creates a CSVSource reading the named column.
func NewCSVSource(r io.Reader, column string) *CSVSource {
	if column == "" {
		column = DefaultCSVColumn
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	return &CSVSource{
		reader: reader,
		column: column,
		index:  -1,
	}
}

func (s *CSVSource) readHeader() error {
	header, err := s.reader.Read()
	if err == io.EOF {
		return fmt.Errorf("csv trace has no header")
	}

	if err != nil {
		return err
	}

	for i, name := range header {
		if name == s.column {
			s.index = i
			return nil
		}
	}

	return fmt.Errorf("csv trace has no column %q", s.column)
}

// Next returns the next block.
func (s *CSVSource) Next() (blockcache.BlockID, error) {
	if s.index < 0 {
		if err := s.readHeader(); err != nil {
			return 0, err
		}
	}

	record, err := s.reader.Read()
	if err != nil {
		return 0, err
	}

	if s.index >= len(record) {
		line, _ := s.reader.FieldPos(0)
		return 0, fmt.Errorf("line %d: missing column %q", line, s.column)
	}

	id, err := ParseAddress(record[s.index])
	if err != nil {
		line, _ := s.reader.FieldPos(s.index)
		return 0, fmt.Errorf("line %d: %w", line, err)
	}

	return id, nil
}
