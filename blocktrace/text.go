package blocktrace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/bblcache/blockcache"
)

// TextSource reads one hexadecimal block address per line. Blank lines and
// lines starting with # are skipped.
type TextSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewTextSource creates a TextSource reading from r.
func NewTextSource(r io.Reader) *TextSource {
	return &TextSource{scanner: bufio.NewScanner(r)}
}

// Next returns the next block.
func (s *TextSource) Next() (blockcache.BlockID, error) {
	for s.scanner.Scan() {
		s.line++

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		id, err := ParseAddress(text)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", s.line, err)
		}

		return id, nil
	}

	if err := s.scanner.Err(); err != nil {
		return 0, err
	}

	return 0, io.EOF
}

// WriteText writes every block of src to w in the format TextSource reads.
// It returns the number of blocks written.
func WriteText(w io.Writer, src Source) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0

	for {
		id, err := src.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return n, err
		}

		if _, err := fmt.Fprintf(bw, "%s\n", id); err != nil {
			return n, err
		}

		n++
	}

	return n, bw.Flush()
}
