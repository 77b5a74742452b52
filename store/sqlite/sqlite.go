/*
Package sqlite provides a SQLite-backed loans.StateStore.

PURPOSE:
  Default store for both the HTTP server and the console. The whole ledger
  state fits in three tables and is rewritten in one transaction on every
  Save.

KEY TABLES:
  active_loans:   Current loans, one row per loan id
  return_history: Closed loans, append-only, ordered by seq
  ledger_meta:    Single row holding the op counter and session fines

APPEND-ONLY HISTORY:
  Save never updates or deletes return_history rows. New records are added
  with INSERT OR IGNORE keyed by receipt_id, so rows already written stay
  byte-for-byte as they were.

FORMATS:
  Dates are ISO "YYYY-MM-DD" text, money is decimal text ("1.5"). Nothing
  is stored in a display format.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single open connection, which
  also keeps ":memory:" databases alive across calls.

USAGE:
  store, err := sqlite.New("./data/loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger, err := loans.Open(ctx, store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/library-loans/loans"
)

// Store implements loans.StateStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS active_loans (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		borrower TEXT NOT NULL,
		loan_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		allowed_days INTEGER NOT NULL CHECK (allowed_days > 0)
	);

	-- Return history (append-only)
	CREATE TABLE IF NOT EXISTS return_history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		receipt_id TEXT NOT NULL UNIQUE,
		loan_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		borrower TEXT NOT NULL,
		loan_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		allowed_days INTEGER NOT NULL,
		return_date TEXT NOT NULL,
		days_late INTEGER NOT NULL CHECK (days_late >= 0),
		fine TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_return_history_loan
		ON return_history(loan_id);

	CREATE TABLE IF NOT EXISTS ledger_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		op_counter INTEGER NOT NULL,
		session_fines TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// STATE STORE (loans.StateStore interface)
// =============================================================================

// Save replaces the active loans and counters and appends unseen returns.
func (s *Store) Save(ctx context.Context, state loans.LedgerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM active_loans"); err != nil {
		return fmt.Errorf("failed to clear active loans: %w", err)
	}
	for _, l := range state.Active {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO active_loans (id, title, borrower, loan_date, due_date, allowed_days)
			VALUES (?, ?, ?, ?, ?, ?)`,
			int64(l.ID), l.Title, l.Borrower, l.LoanDate.String(), l.DueDate.String(), l.AllowedDays,
		)
		if err != nil {
			return fmt.Errorf("failed to insert loan %d: %w", l.ID, err)
		}
	}

	for _, r := range state.History {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT OR IGNORE INTO return_history
			(receipt_id, loan_id, title, borrower, loan_date, due_date, allowed_days,
			 return_date, days_late, fine, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ReceiptID.String(), int64(r.ID), r.Title, r.Borrower,
			r.LoanDate.String(), r.DueDate.String(), r.AllowedDays,
			r.ReturnDate.String(), r.DaysLate, r.Fine.String(), string(r.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to append return %s: %w", r.ReceiptID, err)
		}
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO ledger_meta (id, op_counter, session_fines) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			op_counter = excluded.op_counter,
			session_fines = excluded.session_fines`,
		state.OpCounter, state.SessionFines.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger meta: %w", err)
	}

	return sqlTx.Commit()
}

// Load returns the saved state, or nil if Save has never been called.
func (s *Store) Load(ctx context.Context) (*loans.LedgerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		state loans.LedgerState
		fines string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT op_counter, session_fines FROM ledger_meta WHERE id = 1",
	).Scan(&state.OpCounter, &fines)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger meta: %w", err)
	}
	if state.SessionFines, err = decimal.NewFromString(fines); err != nil {
		return nil, fmt.Errorf("invalid session fines %q: %w", fines, err)
	}

	if state.Active, err = s.loadActive(ctx); err != nil {
		return nil, err
	}
	if state.History, err = s.loadHistory(ctx); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) loadActive(ctx context.Context) ([]loans.Loan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, borrower, loan_date, due_date, allowed_days
		FROM active_loans
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active loans: %w", err)
	}
	defer rows.Close()

	var result []loans.Loan
	for rows.Next() {
		var l loans.Loan
		var id int64
		var loanDate, dueDate string
		if err := rows.Scan(&id, &l.Title, &l.Borrower, &loanDate, &dueDate, &l.AllowedDays); err != nil {
			return nil, err
		}
		l.ID = loans.LoanID(id)
		if l.LoanDate, err = loans.ParseDate(loanDate); err != nil {
			return nil, err
		}
		if l.DueDate, err = loans.ParseDate(dueDate); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *Store) loadHistory(ctx context.Context) ([]loans.ReturnRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT receipt_id, loan_id, title, borrower, loan_date, due_date, allowed_days,
		       return_date, days_late, fine, status
		FROM return_history
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query return history: %w", err)
	}
	defer rows.Close()

	var result []loans.ReturnRecord
	for rows.Next() {
		r, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanReturn(rows *sql.Rows) (loans.ReturnRecord, error) {
	var r loans.ReturnRecord
	var loanID int64
	var receipt, fine, status string
	var loanDate, dueDate, returnDate string
	err := rows.Scan(&receipt, &loanID, &r.Title, &r.Borrower, &loanDate, &dueDate,
		&r.AllowedDays, &returnDate, &r.DaysLate, &fine, &status)
	if err != nil {
		return r, err
	}

	r.ID = loans.LoanID(loanID)
	r.Status = loans.Status(status)
	if r.ReceiptID, err = uuid.Parse(receipt); err != nil {
		return r, fmt.Errorf("invalid receipt id %q: %w", receipt, err)
	}
	if r.Fine, err = decimal.NewFromString(fine); err != nil {
		return r, fmt.Errorf("invalid fine %q: %w", fine, err)
	}
	if r.LoanDate, err = loans.ParseDate(loanDate); err != nil {
		return r, err
	}
	if r.DueDate, err = loans.ParseDate(dueDate); err != nil {
		return r, err
	}
	if r.ReturnDate, err = loans.ParseDate(returnDate); err != nil {
		return r, err
	}
	return r, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"active_loans", "return_history", "ledger_meta"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
