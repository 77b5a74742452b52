/*
Package config reads runtime settings shared by the server and the console.

Every setting is a command-line flag whose default comes from an environment
variable, so either works:

  LOANS_STORE=json LOANS_DSN=./loans.json ./server
  ./server -store=json -dsn=./loans.json

FLAGS / ENVIRONMENT:
  -port          LOANS_PORT          HTTP port (default 8080)
  -store         LOANS_STORE         memory | sqlite | json | postgres (default sqlite)
  -dsn           LOANS_DSN           file path or connection string (default loans.db)
  -fine-per-day  LOANS_FINE_PER_DAY  fine per late day (default 0.50)
  -default-days  LOANS_DEFAULT_DAYS  console default loan length (default 7)
  -overdue-scan  LOANS_OVERDUE_SCAN  overdue scan interval, 0 disables (default 1h)
  -log-level     LOANS_LOG_LEVEL     debug | info | warn | error (default info)
*/
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/library-loans/store"
)

type Config struct {
	Port        int
	StoreKind   store.Kind
	DSN         string
	FinePerDay  decimal.Decimal
	DefaultDays int
	OverdueScan time.Duration
	LogLevel    slog.Level
}

// Load parses args (without the program name) on top of the environment.
func Load(name string, args []string) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	port := fs.Int("port", getenvInt("LOANS_PORT", 8080), "HTTP server port")
	kind := fs.String("store", getenv("LOANS_STORE", string(store.KindSQLite)), "state store: memory, sqlite, json or postgres")
	dsn := fs.String("dsn", getenv("LOANS_DSN", "loans.db"), "store file path or connection string")
	fine := fs.String("fine-per-day", getenv("LOANS_FINE_PER_DAY", "0.50"), "fine charged per late day")
	days := fs.Int("default-days", getenvInt("LOANS_DEFAULT_DAYS", 7), "loan length used by the console when left blank")
	scan := fs.Duration("overdue-scan", getenvDuration("LOANS_OVERDUE_SCAN", time.Hour), "overdue scan interval (0 disables)")
	level := fs.String("log-level", getenv("LOANS_LOG_LEVEL", "info"), "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:        *port,
		StoreKind:   store.Kind(*kind),
		DSN:         *dsn,
		DefaultDays: *days,
		OverdueScan: *scan,
	}

	var err error
	if cfg.FinePerDay, err = decimal.NewFromString(*fine); err != nil {
		return Config{}, fmt.Errorf("invalid fine per day %q: %w", *fine, err)
	}
	if cfg.FinePerDay.IsNegative() {
		return Config{}, fmt.Errorf("fine per day must not be negative, got %s", cfg.FinePerDay)
	}
	if cfg.DefaultDays <= 0 {
		return Config{}, fmt.Errorf("default days must be positive, got %d", cfg.DefaultDays)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(*level)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", *level, err)
	}
	if !validKind(cfg.StoreKind) {
		return Config{}, fmt.Errorf("unknown store %q (want one of %v)", cfg.StoreKind, store.Kinds)
	}
	return cfg, nil
}

// Logger builds the process logger at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func validKind(k store.Kind) bool {
	for _, known := range store.Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring non-numeric env", "key", k, "value", v)
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("ignoring invalid duration env", "key", k, "value", v)
	}
	return def
}
