// Command console runs the interactive loan desk on stdin/stdout.
//
//	./console -store=json -dsn=./data/loans.json
//
// Takes the same flags and LOANS_* variables as the server; -port and
// -overdue-scan are ignored.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/library-loans/config"
	"github.com/warp/library-loans/console"
	"github.com/warp/library-loans/loans"
	"github.com/warp/library-loans/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("console", os.Args[1:])
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreKind, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreKind, err)
	}
	defer st.Close()

	ledger, err := loans.Open(ctx, st,
		loans.WithFinePerDay(cfg.FinePerDay),
		loans.WithLogger(logger))
	if err != nil {
		return err
	}

	session := console.NewSession(ledger, os.Stdin, os.Stdout, logger)
	session.DefaultDays = cfg.DefaultDays
	return session.Run(ctx)
}
