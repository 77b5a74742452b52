/*
ledger.go - Active loans and return history of one library session

PURPOSE:
  The Ledger is the only writer of LedgerState. Callers register loans,
  process returns and read snapshots; the Ledger validates, delegates the
  arithmetic to fees.go and writes the state back through a StateStore.

CRITICAL INVARIANTS:
  1. UNIQUE KEY: at most one active loan per (title, borrower), compared
     trimmed and case-insensitively.
  2. MONOTONIC IDS: every new loan gets OpCounter+1; ids are never reused.
  3. ATOMIC RETURN: history append, fine total, and active-loan removal
     become visible together or not at all.
  4. PERSIST OR ABORT: a mutation is kept only if Save succeeds. On a save
     failure the caller gets ErrPersistenceFailure and the ledger is
     unchanged.

CONCURRENCY:
  All operations hold one mutex, so check-duplicate-then-append and
  find-then-remove are single critical sections even under the HTTP server.

EXAMPLE FLOW:
  day 0:  RegisterLoan("Don Quijote", "Ana", 7)  -> due day 7
  day 10: ReturnLoan("Don Quijote", "Ana")       -> 3 days late, fine 1.50

SEE ALSO:
  - fees.go: DaysLate, Fine, Aggregate
  - store.go: StateStore contract
*/
package loans

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER
// =============================================================================

// MaxAllowedDays is the longest loan the ledger accepts, about a century.
const MaxAllowedDays = 36500

type Ledger struct {
	mu     sync.Mutex
	store  StateStore
	state  LedgerState
	rate   decimal.Decimal
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Ledger)

// WithFinePerDay sets the amount charged per late day.
func WithFinePerDay(rate decimal.Decimal) Option {
	return func(l *Ledger) { l.rate = rate }
}

// WithClock replaces time.Now. Only the calendar day of the returned time
// is used.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Open loads the state held by store and returns a ledger over it.
func Open(ctx context.Context, store StateStore, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		rate:   DefaultFinePerDay,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if loaded != nil {
		l.state = loaded.Clone()
		l.state.normalize()
	}

	l.logger.Info("ledger opened",
		"active_loans", len(l.state.Active),
		"returns", len(l.state.History),
		"op_counter", l.state.OpCounter)
	return l, nil
}

// FinePerDay returns the rate this ledger charges.
func (l *Ledger) FinePerDay() decimal.Decimal { return l.rate }

func (l *Ledger) today() Date { return DateOf(l.now()) }

// =============================================================================
// MUTATIONS
// =============================================================================

// RegisterLoan lends title to borrower for allowedDays calendar days
// starting today.
func (l *Ledger) RegisterLoan(ctx context.Context, title, borrower string, allowedDays int) (Loan, error) {
	title = strings.TrimSpace(title)
	borrower = strings.TrimSpace(borrower)
	if err := validateLoanInput(title, borrower, allowedDays); err != nil {
		return Loan{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := NewLoanKey(title, borrower)
	if i := l.indexOf(key); i >= 0 {
		return Loan{}, &DuplicateLoanError{
			Title:      title,
			Borrower:   borrower,
			ExistingID: l.state.Active[i].ID,
		}
	}

	today := l.today()
	due := today.AddDays(allowedDays)
	if due.After(MaxDate) {
		return Loan{}, &InvalidInputError{Field: FieldAllowedDays, Reason: "puts the due date past " + MaxDate.String()}
	}

	next := l.state.Clone()
	next.OpCounter++
	loan := Loan{
		ID:          LoanID(next.OpCounter),
		Title:       title,
		Borrower:    borrower,
		LoanDate:    today,
		DueDate:     due,
		AllowedDays: allowedDays,
	}
	next.Active = append(next.Active, loan)

	if err := l.commit(ctx, "register", next); err != nil {
		return Loan{}, err
	}

	l.logger.Info("loan registered",
		"loan_id", loan.ID,
		"title", loan.Title,
		"borrower", loan.Borrower,
		"due_date", loan.DueDate.String())
	return loan, nil
}

// ReturnLoan closes the active loan of title held by borrower and charges
// the late fee, if any.
func (l *Ledger) ReturnLoan(ctx context.Context, title, borrower string) (ReturnRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(NewLoanKey(title, borrower))
	if i < 0 {
		return ReturnRecord{}, &LoanNotFoundError{
			Title:    strings.TrimSpace(title),
			Borrower: strings.TrimSpace(borrower),
		}
	}
	loan := l.state.Active[i]

	returned := l.today()
	daysLate := DaysLate(loan.DueDate, returned)
	rec := ReturnRecord{
		Loan:       loan,
		ReceiptID:  uuid.New(),
		ReturnDate: returned,
		DaysLate:   daysLate,
		Fine:       Fine(daysLate, l.rate),
		Status:     StatusFor(daysLate),
	}

	next := l.state.Clone()
	next.History = append(next.History, rec)
	next.SessionFines = next.SessionFines.Add(rec.Fine)
	next.Active = append(next.Active[:i:i], next.Active[i+1:]...)

	if err := l.commit(ctx, "return", next); err != nil {
		return ReturnRecord{}, err
	}

	l.logger.Info("loan returned",
		"loan_id", rec.ID,
		"receipt_id", rec.ReceiptID.String(),
		"days_late", rec.DaysLate,
		"fine", rec.Fine.StringFixed(2),
		"status", string(rec.Status))
	return rec, nil
}

// commit saves next and, only if that works, makes it the live state.
// Caller holds l.mu.
func (l *Ledger) commit(ctx context.Context, op string, next LedgerState) error {
	if err := l.store.Save(ctx, next); err != nil {
		l.logger.Warn("ledger save failed", "op", op, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
	l.state = next
	return nil
}

// indexOf returns the position of the first active loan with key, or -1.
// Caller holds l.mu.
func (l *Ledger) indexOf(key LoanKey) int {
	for i, loan := range l.state.Active {
		if loan.Key() == key {
			return i
		}
	}
	return -1
}

// =============================================================================
// QUERIES
// =============================================================================

// ActiveLoans returns the active loans in registration order.
func (l *Ledger) ActiveLoans() []Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Loan{}, l.state.Active...)
}

// History returns every processed return in processing order.
func (l *Ledger) History() []ReturnRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ReturnRecord{}, l.state.History...)
}

func (l *Ledger) Statistics() Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Aggregate(l.state.Active, l.state.History, l.state.SessionFines)
}

// Overdue lists active loans already past due as of today.
func (l *Ledger) Overdue() []OverdueLoan {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ProjectOverdue(l.state.Active, l.today(), l.rate)
}

// =============================================================================
// INPUT
// =============================================================================

func validateLoanInput(title, borrower string, allowedDays int) error {
	if title == "" {
		return &InvalidInputError{Field: FieldTitle, Reason: "must not be empty"}
	}
	if borrower == "" {
		return &InvalidInputError{Field: FieldBorrower, Reason: "must not be empty"}
	}
	if allowedDays <= 0 {
		return &InvalidInputError{Field: FieldAllowedDays, Reason: "must be a positive number of days"}
	}
	if allowedDays > MaxAllowedDays {
		return &InvalidInputError{Field: FieldAllowedDays, Reason: fmt.Sprintf("must be at most %d days", MaxAllowedDays)}
	}
	return nil
}

// ParseAllowedDays converts a typed day count. Blank input yields
// defaultDays when it is positive; pass 0 to make the value required.
func ParseAllowedDays(raw string, defaultDays int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if defaultDays > 0 {
			return defaultDays, nil
		}
		return 0, &InvalidInputError{Field: FieldAllowedDays, Reason: "is required"}
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InvalidInputError{Field: FieldAllowedDays, Reason: "must be a whole number"}
	}
	if days <= 0 {
		return 0, &InvalidInputError{Field: FieldAllowedDays, Reason: "must be a positive number of days"}
	}
	if days > MaxAllowedDays {
		return 0, &InvalidInputError{Field: FieldAllowedDays, Reason: fmt.Sprintf("must be at most %d days", MaxAllowedDays)}
	}
	return days, nil
}
