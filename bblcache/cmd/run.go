package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/bblcache/blockcache"
	"github.com/sarchlab/bblcache/blocktrace"
	"github.com/sarchlab/bblcache/config"
	"github.com/sarchlab/bblcache/datarecording"
	"github.com/sarchlab/bblcache/monitoring"
	"github.com/sarchlab/bblcache/report"
	"github.com/sarchlab/bblcache/tracing"
)

var runFlags = config.Default()

var runCmd = &cobra.Command{
	Use:   "run [trace]",
	Short: "Replay a block trace through the cache and report hits and misses",
	Long: `Replay a block trace through the cache and report hits and misses. ` +
		`The trace holds one block start address per line (hexadecimal), ` +
		`a CSV column of addresses, or a recording made with --record. ` +
		`Without a trace argument the addresses are read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveRunConfig(cmd.Flags(), args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		r := &runner{
			cfg:    cfg,
			stdin:  cmd.InOrStdin(),
			stderr: cmd.ErrOrStderr(),
		}

		return r.run(ctx)
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVarP(&runFlags.Capacity, "size", "n", runFlags.Capacity,
		"size of the basic block cache")
	f.StringVar(&runFlags.CacheName, "name", runFlags.CacheName,
		"name of the cache in recordings and JSON output")
	f.BoolVar(&runFlags.Indexed, "indexed", runFlags.Indexed,
		"use a hash index for membership tests, for large caches")
	f.StringVar(&runFlags.TraceFormat, "format", runFlags.TraceFormat,
		"trace format: auto, text, csv or sqlite")
	f.StringVar(&runFlags.CSVColumn, "column", runFlags.CSVColumn,
		"CSV column holding the block addresses")
	f.Uint64Var(&runFlags.Limit, "limit", runFlags.Limit,
		"stop after this many blocks (0 means no limit)")
	f.StringVarP(&runFlags.OutputFile, "output", "o", runFlags.OutputFile,
		"specify file name for the analysis output")
	f.BoolVar(&runFlags.JSON, "json", runFlags.JSON,
		"print the results as JSON")
	f.IntVar(&runFlags.Top, "top", runFlags.Top,
		"also list the N most executed blocks")
	f.StringVar(&runFlags.RecordPath, "record", runFlags.RecordPath,
		"record the run into this SQLite database")
	f.BoolVar(&runFlags.RecordAccesses, "record-accesses",
		runFlags.RecordAccesses,
		"store every access in the recording, not only the summary")
	f.BoolVar(&runFlags.Monitor, "monitor", runFlags.Monitor,
		"serve live statistics over HTTP")
	f.IntVar(&runFlags.MonitorPort, "monitor-port", runFlags.MonitorPort,
		"port of the monitoring server (0 picks a free port)")
	f.BoolVar(&runFlags.OpenBrowser, "open-browser", runFlags.OpenBrowser,
		"open the monitoring page in a browser")

	rootCmd.AddCommand(runCmd)
}

// resolveRunConfig layers the defaults, the environment and the flags that
// were set explicitly on the command line.
func resolveRunConfig(flags *pflag.FlagSet, args []string) (config.Config, error) {
	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	overrides := map[string]func(){
		"size":            func() { cfg.Capacity = runFlags.Capacity },
		"name":            func() { cfg.CacheName = runFlags.CacheName },
		"indexed":         func() { cfg.Indexed = runFlags.Indexed },
		"format":          func() { cfg.TraceFormat = runFlags.TraceFormat },
		"column":          func() { cfg.CSVColumn = runFlags.CSVColumn },
		"limit":           func() { cfg.Limit = runFlags.Limit },
		"output":          func() { cfg.OutputFile = runFlags.OutputFile },
		"json":            func() { cfg.JSON = runFlags.JSON },
		"top":             func() { cfg.Top = runFlags.Top },
		"record":          func() { cfg.RecordPath = runFlags.RecordPath },
		"record-accesses": func() { cfg.RecordAccesses = runFlags.RecordAccesses },
		"monitor":         func() { cfg.Monitor = runFlags.Monitor },
		"monitor-port":    func() { cfg.MonitorPort = runFlags.MonitorPort },
		"open-browser":    func() { cfg.OpenBrowser = runFlags.OpenBrowser },
	}

	flags.Visit(func(f *pflag.Flag) {
		if override, ok := overrides[f.Name]; ok {
			override()
		}
	})

	if len(args) == 1 {
		cfg.TracePath = args[0]
	}

	return cfg, cfg.Validate()
}

// runner owns the cache and every sink of one run.
type runner struct {
	cfg    config.Config
	stdin  io.Reader
	stderr io.Writer

	cache    *blockcache.Cache
	recorder blocktrace.Recorder
	stats    blockcache.StatsSource

	counter  *tracing.BlockCounter
	dbTracer *tracing.DBTracer
	exec     *datarecording.ExecRecorder

	monitor  *monitoring.Monitor
	progress *monitoring.ProgressBar

	closers []func() error
}

func (r *runner) run(ctx context.Context) (err error) {
	defer func() {
		for i := len(r.closers) - 1; i >= 0; i-- {
			if closeErr := r.closers[i](); closeErr != nil && err == nil {
				err = closeErr
			}
		}
	}()

	src, err := r.openSource(ctx)
	if err != nil {
		return err
	}

	out, err := r.openOutput()
	if err != nil {
		return err
	}

	if err := report.Banner(r.stderr, r.cfg.OutputFile); err != nil {
		return err
	}

	r.buildCache()

	if err := r.startRecording(); err != nil {
		return err
	}

	if err := r.startMonitor(); err != nil {
		return err
	}

	driver := blocktrace.NewDriver().WithLimit(r.cfg.Limit)
	if r.progress != nil {
		driver.WithProgress(r.progress)
	}

	start := time.Now()
	n, runErr := driver.Run(ctx, src, r.recorder)
	log.Printf("replayed %d blocks in %s", n, time.Since(start).Round(time.Millisecond))

	if runErr != nil {
		log.Printf("replay stopped early: %v", runErr)
	}

	if err := r.finish(out); err != nil {
		return err
	}

	return runErr
}

func (r *runner) openSource(ctx context.Context) (blocktrace.Source, error) {
	format := r.cfg.ResolveFormat()

	if format == config.FormatSQLite {
		reader, err := datarecording.OpenReader(r.cfg.TracePath)
		if err != nil {
			return nil, fmt.Errorf("opening recording: %w", err)
		}

		r.closers = append(r.closers, reader.Close)

		return blocktrace.NewRecordedSource(ctx, reader, ""), nil
	}

	in := r.stdin
	if r.cfg.TracePath != "" && r.cfg.TracePath != "-" {
		f, err := os.Open(r.cfg.TracePath)
		if err != nil {
			return nil, fmt.Errorf("opening trace: %w", err)
		}

		r.closers = append(r.closers, f.Close)
		in = f
	}

	if format == config.FormatCSV {
		return blocktrace.NewCSVSource(in, r.cfg.CSVColumn), nil
	}

	return blocktrace.NewTextSource(in), nil
}

func (r *runner) openOutput() (io.Writer, error) {
	if r.cfg.OutputFile == "" {
		return r.stderr, nil
	}

	f, err := os.Create(r.cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}

	r.closers = append(r.closers, f.Close)

	return f, nil
}

func (r *runner) buildCache() {
	r.cache = blockcache.MakeBuilder().
		WithCapacity(r.cfg.Capacity).
		WithIndex(r.cfg.Indexed).
		Build(r.cfg.CacheName)
	r.recorder = r.cache
	r.stats = r.cache

	if r.cfg.Top > 0 {
		r.counter = tracing.NewBlockCounter()
		tracing.CollectTrace(r.cache, r.counter)
	}
}

func (r *runner) startRecording() error {
	if r.cfg.RecordPath == "" {
		return nil
	}

	data, err := datarecording.Open(r.cfg.RecordPath)
	if err != nil {
		return fmt.Errorf("opening recording: %w", err)
	}

	r.closers = append(r.closers, data.Close)

	runID := xid.New().String()

	r.exec = datarecording.NewExecRecorder(data)
	r.exec.Start(
		datarecording.ExecInfo{Property: "Run ID", Value: runID},
		datarecording.ExecInfo{Property: "Capacity",
			Value: strconv.Itoa(r.cfg.Capacity)},
		datarecording.ExecInfo{Property: "Trace", Value: r.cfg.TracePath},
	)

	r.dbTracer = tracing.NewDBTracer(data, runID, r.cfg.RecordAccesses)
	tracing.CollectTrace(r.cache, r.dbTracer)

	return nil
}

func (r *runner) startMonitor() error {
	if !r.cfg.Monitor {
		return nil
	}

	guarded := blockcache.NewGuarded(r.cache)
	r.recorder = guarded
	r.stats = guarded

	r.monitor = monitoring.NewMonitor().WithPortNumber(r.cfg.MonitorPort)
	r.monitor.RegisterCache(guarded)
	r.progress = r.monitor.CreateProgressBar("Replay", r.cfg.Limit)

	url, err := r.monitor.StartServer()
	if err != nil {
		return err
	}

	r.closers = append(r.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		return r.monitor.Shutdown(ctx)
	})

	if r.cfg.OpenBrowser {
		if err := r.monitor.OpenInBrowser(url); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return nil
}

func (r *runner) finish(out io.Writer) error {
	stats := r.stats.Stats()

	if r.monitor != nil {
		r.monitor.CompleteProgressBar(r.progress)
	}

	if r.dbTracer != nil {
		r.dbTracer.Finish(stats)
		r.exec.End()
	}

	var top []tracing.BlockCount
	if r.counter != nil {
		top = r.counter.Top(r.cfg.Top)
	}

	if r.cfg.JSON {
		return report.WriteJSON(out, stats, top)
	}

	if err := report.Write(out, stats); err != nil {
		return err
	}

	return report.WriteTop(out, top)
}
