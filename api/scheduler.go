/*
scheduler.go - Periodic overdue-loan scan

PURPOSE:
  Once per interval, looks at the active loans and logs every loan already
  past due with the fine it would incur if returned today. Gives the
  librarian a running list of books to chase without polling the API.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only calls read-only ledger methods; never mutates state
  - Keeps the result of the last scan for inspection

USAGE:
  scanner := NewOverdueScanner(ledger, logger)
  scanner.CheckInterval = 30 * time.Minute
  scanner.Start()
  // ... later
  scanner.Stop()
*/
package api

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/library-loans/loans"
)

// OverdueReader is the part of the ledger the scanner needs.
type OverdueReader interface {
	Overdue() []loans.OverdueLoan
}

// ScanResult summarizes one pass.
type ScanResult struct {
	At           time.Time
	Overdue      int
	PendingFines decimal.Decimal
}

// OverdueScanner logs overdue loans on a ticker.
type OverdueScanner struct {
	Ledger        OverdueReader
	CheckInterval time.Duration
	Enabled       bool

	logger *slog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	last   ScanResult
}

// NewOverdueScanner creates a new scanner.
func NewOverdueScanner(ledger OverdueReader, logger *slog.Logger) *OverdueScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &OverdueScanner{
		Ledger:        ledger,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		logger:        logger,
	}
}

// Start begins the scanner.
func (s *OverdueScanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled || s.CheckInterval <= 0 {
		s.logger.Info("overdue scanner disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.logger.Info("overdue scanner started", "interval", s.CheckInterval)
}

// Stop stops the scanner and waits for the current pass to finish.
func (s *OverdueScanner) Stop() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("overdue scanner stopped")
}

// Last returns the result of the most recent pass.
func (s *OverdueScanner) Last() ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *OverdueScanner) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.Scan()

	for {
		select {
		case <-ticker.C:
			s.Scan()
		case <-stop:
			return
		}
	}
}

// Scan performs one pass and returns its summary.
func (s *OverdueScanner) Scan() ScanResult {
	overdue := s.Ledger.Overdue()

	result := ScanResult{At: time.Now(), Overdue: len(overdue), PendingFines: decimal.Zero}
	for _, o := range overdue {
		result.PendingFines = result.PendingFines.Add(o.Fine)
		s.logger.Warn("loan overdue",
			"loan_id", o.ID,
			"title", o.Title,
			"borrower", o.Borrower,
			"due_date", o.DueDate.Display(),
			"days_late", o.DaysLate,
			"fine", o.Fine.StringFixed(2))
	}

	s.logger.Info("overdue scan complete",
		"overdue", result.Overdue,
		"pending_fines", result.PendingFines.StringFixed(2))

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()
	return result
}
