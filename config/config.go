// Package config holds the settings of a block cache run and loads them from
// .env files and BBLCACHE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarchlab/bblcache/blockcache"
)

// EnvPrefix is the prefix of every environment variable the config reads.
const EnvPrefix = "BBLCACHE_"

// Trace formats understood by the run command.
const (
	FormatAuto   = "auto"
	FormatText   = "text"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Config describes one run.
type Config struct {
	// Capacity is the number of blocks the cache keeps.
	Capacity int
	// CacheName labels the cache in recordings and JSON output.
	CacheName string
	// Indexed selects the hash-indexed membership test.
	Indexed bool

	// TracePath is the trace to replay. "-" or empty reads stdin.
	TracePath   string
	TraceFormat string
	CSVColumn   string
	// Limit stops the replay after this many blocks. Zero means no limit.
	Limit uint64

	// OutputFile receives the report. Empty means stderr.
	OutputFile string
	JSON       bool
	Top        int

	// RecordPath names the SQLite recording. Empty disables recording.
	RecordPath     string
	RecordAccesses bool

	Monitor     bool
	MonitorPort int
	OpenBrowser bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Capacity:       blockcache.DefaultCapacity,
		CacheName:      "BBLCache",
		TraceFormat:    FormatAuto,
		CSVColumn:      "address",
		RecordAccesses: true,
	}
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Without arguments it loads ./.env if it
// exists.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}

		files = []string{".env"}
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from BBLCACHE_* environment variables.
func (c *Config) ApplyEnv() error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	integer := func(name string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	unsigned := func(name string, dst *uint64) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	boolean := func(name string, dst *bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	integer("SIZE", &c.Capacity)
	str("CACHE_NAME", &c.CacheName)
	boolean("INDEXED", &c.Indexed)
	str("TRACE", &c.TracePath)
	str("FORMAT", &c.TraceFormat)
	str("COLUMN", &c.CSVColumn)
	unsigned("LIMIT", &c.Limit)
	str("OUTPUT", &c.OutputFile)
	boolean("JSON", &c.JSON)
	integer("TOP", &c.Top)
	str("RECORD", &c.RecordPath)
	boolean("RECORD_ACCESSES", &c.RecordAccesses)
	boolean("MONITOR", &c.Monitor)
	integer("MONITOR_PORT", &c.MonitorPort)
	boolean("OPEN_BROWSER", &c.OpenBrowser)

	return errors.Join(errs...)
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error

	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d",
			blockcache.ErrInvalidCapacity, c.Capacity))
	}

	switch c.TraceFormat {
	case FormatAuto, FormatText, FormatCSV, FormatSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown trace format %q", c.TraceFormat))
	}

	if c.TraceFormat == FormatSQLite && c.readsStdin() {
		errs = append(errs, errors.New("sqlite traces cannot be read from stdin"))
	}

	if c.Top < 0 {
		errs = append(errs, fmt.Errorf("top must not be negative, got %d", c.Top))
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid monitor port %d", c.MonitorPort))
	}

	return errors.Join(errs...)
}

func (c *Config) readsStdin() bool {
	return c.TracePath == "" || c.TracePath == "-"
}

// ResolveFormat returns the trace format, guessing it from the file extension
// when it is FormatAuto.
func (c *Config) ResolveFormat() string {
	if c.TraceFormat != FormatAuto && c.TraceFormat != "" {
		return c.TraceFormat
	}

	switch strings.ToLower(filepath.Ext(c.TracePath)) {
	case ".csv":
		return FormatCSV
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite
	default:
		return FormatText
	}
}
