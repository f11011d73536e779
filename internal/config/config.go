// Package config resolves server settings from defaults, a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Defaults.
const (
	DefaultDBPath        = "knjiznica.sqlite3"
	DefaultAddr          = ":8080"
	DefaultAuditSchedule = "@every 1h"
	DefaultMaxConns      = 256
)

// AuditOff disables the periodic ledger audit.
const AuditOff = "off"

// Config holds the server settings.
type Config struct {
	DBPath        string
	Addr          string
	LogPath       string
	AuditSchedule string
	MaxConns      int
}

// AuditEnabled reports whether a periodic audit is configured.
func (c *Config) AuditEnabled() bool {
	return c.AuditSchedule != AuditOff
}

const usage = `Usage: knjiznica [flags]

Flags:
  -d, -db <path>          SQLite database path (default: knjiznica.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -s, -audit <schedule>   ledger audit cron schedule, or "off" (default: @every 1h)
  -c, -max-conns <n>      concurrent connection limit, 0 for none (default: 256)
  -h, -help               show this help and exit

Every flag can also be set in the environment or a .env file:
  KNJIZNICA_DB, KNJIZNICA_ADDR, KNJIZNICA_LOG, KNJIZNICA_AUDIT_SCHEDULE,
  KNJIZNICA_MAX_CONNS
`

// Load reads .env (if present) and the environment, then applies args.
// It returns flag.ErrHelp when help was requested; usage has been written to
// out by then.
func Load(args []string, out io.Writer) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	maxConns := DefaultMaxConns
	if v := strings.TrimSpace(os.Getenv("KNJIZNICA_MAX_CONNS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KNJIZNICA_MAX_CONNS %q", v)
		}
		maxConns = n
	}

	cfg := &Config{
		DBPath:        withDefault(os.Getenv("KNJIZNICA_DB"), DefaultDBPath),
		Addr:          withDefault(os.Getenv("KNJIZNICA_ADDR"), DefaultAddr),
		LogPath:       strings.TrimSpace(os.Getenv("KNJIZNICA_LOG")),
		AuditSchedule: withDefault(os.Getenv("KNJIZNICA_AUDIT_SCHEDULE"), DefaultAuditSchedule),
		MaxConns:      maxConns,
	}

	flags := flag.NewFlagSet("knjiznica", flag.ContinueOnError)
	flags.SetOutput(out)

	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	flags.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	flags.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	flags.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	flags.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	flags.StringVar(&cfg.AuditSchedule, "audit", cfg.AuditSchedule, "")
	flags.StringVar(&cfg.AuditSchedule, "s", cfg.AuditSchedule, "")

	flags.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "")
	flags.IntVar(&cfg.MaxConns, "c", cfg.MaxConns, "")

	flags.Usage = func() { fmt.Fprint(out, usage) }

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		flags.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxConns < 0 {
		return fmt.Errorf("max connections must not be negative, got %d", c.MaxConns)
	}
	if c.AuditEnabled() {
		if _, err := cron.ParseStandard(c.AuditSchedule); err != nil {
			return fmt.Errorf("invalid audit schedule %q: %w", c.AuditSchedule, err)
		}
	}
	return nil
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
