package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/bblcache/blocktrace"
)

type genOptions struct {
	pattern    string
	base       string
	blocks     int
	iterations int
	length     int
	seed       int64
	output     string
}

var genOpts = genOptions{
	pattern:    "loop",
	base:       "0x400000",
	blocks:     64,
	iterations: 100,
	length:     10000,
	seed:       1,
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic block trace in the text format",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return generate(genOpts, cmd.OutOrStdout())
	},
}

func init() {
	f := genCmd.Flags()
	f.StringVar(&genOpts.pattern, "pattern", genOpts.pattern,
		"access pattern: loop or random")
	f.StringVar(&genOpts.base, "base", genOpts.base,
		"address of the first block")
	f.IntVar(&genOpts.blocks, "blocks", genOpts.blocks,
		"number of distinct blocks")
	f.IntVar(&genOpts.iterations, "iterations", genOpts.iterations,
		"loop iterations (loop pattern)")
	f.IntVar(&genOpts.length, "length", genOpts.length,
		"number of executed blocks (random pattern)")
	f.Int64Var(&genOpts.seed, "seed", genOpts.seed,
		"random seed (random pattern)")
	f.StringVarP(&genOpts.output, "output", "o", genOpts.output,
		"write the trace to this file instead of stdout")

	rootCmd.AddCommand(genCmd)
}

func generate(opts genOptions, stdout io.Writer) (err error) {
	base, err := blocktrace.ParseAddress(opts.base)
	if err != nil {
		return fmt.Errorf("invalid base: %w", err)
	}

	if opts.blocks <= 0 {
		return fmt.Errorf("invalid number of blocks %d", opts.blocks)
	}

	var src blocktrace.Source

	switch opts.pattern {
	case "loop":
		src = blocktrace.NewLoopSource(base, opts.blocks, opts.iterations)
	case "random":
		src = blocktrace.NewRandomSource(opts.seed, base, opts.blocks, opts.length)
	default:
		return fmt.Errorf("unknown pattern %q", opts.pattern)
	}

	out := stdout
	if opts.output != "" {
		f, createErr := os.Create(opts.output)
		if createErr != nil {
			return createErr
		}

		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		out = f
	}

	n, err := blocktrace.WriteText(out, src)
	if err != nil {
		return err
	}

	if opts.output != "" {
		log.Printf("wrote %d blocks to %s", n, opts.output)
	}

	return nil
}
