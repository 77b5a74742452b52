/*
Package loans provides the loan lifecycle and fee engine of the library.

PURPOSE:
  Keeps track of which patron holds which book, closes loans when books come
  back, charges a fixed fine per late day, and reports the day's figures.
  Everything a caller (HTTP form, console menu) needs goes through Ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Loan: an active borrowing of one title by one borrower
  - ReturnRecord: an immutable entry in the return history
  - LedgerState: the whole persisted state of a ledger
  - Statistics: aggregate figures derived from a LedgerState

DESIGN PRINCIPLES:
  1. One key per loan: (title, borrower), trimmed and case-insensitive
  2. Precision: fines use decimal.Decimal, never float64
  3. Calendar days: all dates are Date values, see time.go
  4. Append-only history: return records are never edited or removed

USAGE:
  ledger, err := loans.Open(ctx, memory.New())
  loan, err := ledger.RegisterLoan(ctx, "Don Quijote", "Ana", 7)
  rec, err := ledger.ReturnLoan(ctx, "don quijote", "ANA")

SEE ALSO:
  - ledger.go: Operations and invariants
  - fees.go: Days-late, fine and statistics calculator
  - store.go: Persistence interface
*/
package loans

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// LOAN - Active borrowing record
// =============================================================================

type LoanID int64

type Loan struct {
	ID          LoanID `json:"id"`
	Title       string `json:"title"`
	Borrower    string `json:"borrower"`
	LoanDate    Date   `json:"loan_date"`
	DueDate     Date   `json:"due_date"`
	AllowedDays int    `json:"allowed_days"`
}

// Key returns the identity used for duplicate detection and lookups.
func (l Loan) Key() LoanKey { return NewLoanKey(l.Title, l.Borrower) }

// LoanKey is the normalized (title, borrower) pair.
type LoanKey struct {
	Title    string
	Borrower string
}

func NewLoanKey(title, borrower string) LoanKey {
	return LoanKey{
		Title:    strings.ToLower(strings.TrimSpace(title)),
		Borrower: strings.ToLower(strings.TrimSpace(borrower)),
	}
}

// =============================================================================
// RETURN RECORD - Closed loan, kept forever
// =============================================================================

type Status string

const (
	StatusOnTime Status = "ON_TIME"
	StatusLate   Status = "LATE"
)

// StatusFor derives the status from the number of late days.
func StatusFor(daysLate int) Status {
	if daysLate > 0 {
		return StatusLate
	}
	return StatusOnTime
}

type ReturnRecord struct {
	Loan
	ReceiptID  uuid.UUID       `json:"receipt_id"`
	ReturnDate Date            `json:"return_date"`
	DaysLate   int             `json:"days_late"`
	Fine       decimal.Decimal `json:"fine"`
	Status     Status          `json:"status"`
}

// =============================================================================
// LEDGER STATE - Everything a StateStore persists
// =============================================================================

type LedgerState struct {
	Active       []Loan          `json:"active_loans"`
	History      []ReturnRecord  `json:"return_history"`
	SessionFines decimal.Decimal `json:"session_fines"`
	OpCounter    int64           `json:"op_counter"`
}

// Clone returns a copy that shares no slices with s.
func (s LedgerState) Clone() LedgerState {
	out := LedgerState{
		SessionFines: s.SessionFines,
		OpCounter:    s.OpCounter,
	}
	if len(s.Active) > 0 {
		out.Active = append([]Loan(nil), s.Active...)
	}
	if len(s.History) > 0 {
		out.History = append([]ReturnRecord(nil), s.History...)
	}
	return out
}

// normalize raises the operation counter above every id already issued so
// a hand-edited or partially migrated store never causes id reuse.
func (s *LedgerState) normalize() {
	for _, l := range s.Active {
		if int64(l.ID) > s.OpCounter {
			s.OpCounter = int64(l.ID)
		}
	}
	for _, r := range s.History {
		if int64(r.ID) > s.OpCounter {
			s.OpCounter = int64(r.ID)
		}
	}
}

// =============================================================================
// STATISTICS - Derived figures
// =============================================================================

type Statistics struct {
	ActiveLoans   int             `json:"active_loans"`
	TotalReturns  int             `json:"total_returns"`
	OnTimeReturns int             `json:"on_time_returns"`
	LateReturns   int             `json:"late_returns"`
	SessionFines  decimal.Decimal `json:"session_fines"`
	MeanDaysLate  decimal.Decimal `json:"mean_days_late"`
}

// OverdueLoan is an active loan already past its due date, with the fine it
// would incur if returned on AsOf.
type OverdueLoan struct {
	Loan
	AsOf     Date            `json:"as_of"`
	DaysLate int             `json:"days_late"`
	Fine     decimal.Decimal `json:"fine"`
}
