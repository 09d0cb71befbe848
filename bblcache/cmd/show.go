package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/bblcache/blockcache"
	"github.com/sarchlab/bblcache/datarecording"
	"github.com/sarchlab/bblcache/report"
	"github.com/sarchlab/bblcache/tracing"
)

var showCmd = &cobra.Command{
	Use:   "show <recording>",
	Short: "Print the runs stored in a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return show(cmd.Context(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func show(ctx context.Context, path string, w io.Writer) (err error) {
	reader, err := datarecording.OpenReader(path)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	reader.MapTable(datarecording.ExecTableName, datarecording.ExecInfo{})
	reader.MapTable(tracing.SummaryTableName, tracing.SummaryEntry{})

	infos, _, err := reader.Query(ctx, datarecording.ExecTableName,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, i := range infos {
		info := i.(*datarecording.ExecInfo)
		if _, err := fmt.Fprintf(w, "%s: %s\n", info.Property, info.Value); err != nil {
			return err
		}
	}

	summaries, _, err := reader.Query(ctx, tracing.SummaryTableName,
		datarecording.QueryParams{})
	if err != nil {
		return err
	}

	for _, s := range summaries {
		summary := s.(*tracing.SummaryEntry)

		err := report.Write(w, blockcache.Stats{
			Name:          summary.Cache,
			Capacity:      summary.Capacity,
			Size:          summary.Size,
			TotalAccesses: summary.TotalAccesses,
			Hits:          summary.Hits,
			Misses:        summary.Misses,
			Evictions:     summary.Evictions,
		})
		if err != nil {
			return err
		}
	}

	return nil
}
