// Package cmd provides the command-line interface for bblcache.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bblcache/config"
)

var envFiles []string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bblcache",
	Short: "bblcache replays traces of executed basic blocks through a block cache.",
	Long: `bblcache replays traces of executed basic blocks through a bounded ` +
		`block cache that evicts in insertion order, and reports how many ` +
		`block executions hit or missed the cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv(envFiles...)
	},
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("bblcache: ")

	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil,
		"load settings from these .env files (default ./.env if present)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
