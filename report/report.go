// Package report prints the results of a block cache run.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/bblcache/blockcache"
	"github.com/sarchlab/bblcache/tracing"
)

// Separator frames the banner and the report.
const Separator = "==============================================="

// ToolName is shown in the banner and the report heading.
const ToolName = "bblcache"

// Write prints the counters of a run in the four-line labeled format.
func Write(w io.Writer, s blockcache.Stats) error {
	_, err := fmt.Fprintf(w,
		"%s\n"+
			"%s analysis results: \n"+
			"Number of basic blocks: %d\n"+
			"Number of basic block hits: %d\n"+
			"Number of basic block misses: %d\n"+
			"Size of cache: %d\n"+
			"%s\n",
		Separator,
		ToolName,
		s.TotalAccesses,
		s.Hits,
		s.Misses,
		s.Size,
		Separator,
	)

	return err
}

// Result is the JSON form of a run.
type Result struct {
	blockcache.Stats

	HitRate   float64              `json:"hit_rate"`
	TopBlocks []tracing.BlockCount `json:"top_blocks,omitempty"`
}

// WriteJSON prints the counters, the hit rate and optionally the hottest
// blocks as indented JSON.
func WriteJSON(w io.Writer, s blockcache.Stats, top []tracing.BlockCount) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Result{
		Stats:     s,
		HitRate:   s.HitRate(),
		TopBlocks: top,
	})
}

// WriteTop prints the hottest blocks, one per line.
func WriteTop(w io.Writer, top []tracing.BlockCount) error {
	if len(top) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "Most executed basic blocks:\n"); err != nil {
		return err
	}

	for _, c := range top {
		_, err := fmt.Fprintf(w, "  %s executions: %d hits: %d misses: %d\n",
			c.Block, c.Accesses(), c.Hits, c.Misses)
		if err != nil {
			return err
		}
	}

	return nil
}

// Banner announces the run. When the results go to a file, the banner names
// it.
func Banner(w io.Writer, outputFile string) error {
	_, err := fmt.Fprintf(w, "%s\nThis application is analyzed by %s\n",
		Separator, ToolName)
	if err != nil {
		return err
	}

	if outputFile != "" {
		_, err = fmt.Fprintf(w, "See file %s for analysis results\n", outputFile)
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "%s\n", Separator)

	return err
}
