/*
main.go - HTTP server entry point

STARTUP SEQUENCE:
  1. Load configuration (flags over LOANS_* environment)
  2. Open the configured state store
  3. Open the ledger from the stored state
  4. Start the overdue scanner
  5. Serve HTTP with graceful shutdown

EXAMPLES:
  # SQLite file (default)
  ./server -dsn=./data/loans.db

  # JSON document, like the browser's local storage
  ./server -store=json -dsn=./data/loans.json

  # Throwaway in-memory session on another port
  ./server -store=memory -port=3000

SEE ALSO:
  - config/config.go: All flags and environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/library-loans/api"
	"github.com/warp/library-loans/config"
	"github.com/warp/library-loans/loans"
	"github.com/warp/library-loans/store"
)

func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger()

	ctx := context.Background()

	// Initialize store
	st, err := store.Open(ctx, cfg.StoreKind, cfg.DSN)
	if err != nil {
		logger.Error("failed to open store", "store", cfg.StoreKind, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ledger, err := loans.Open(ctx, st,
		loans.WithFinePerDay(cfg.FinePerDay),
		loans.WithLogger(logger))
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}

	scanner := api.NewOverdueScanner(ledger, logger)
	scanner.CheckInterval = cfg.OverdueScan
	scanner.Start()
	defer scanner.Stop()

	handler := api.NewHandler(ledger, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", cfg.Port), "store", cfg.StoreKind)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
