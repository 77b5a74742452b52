/*
errors.go - Error types for the loan ledger

ERROR CATEGORIES:
  1. Input errors    - InvalidInput (names the failing field)
  2. State conflicts - DuplicateLoan, LoanNotFound
  3. Store errors    - PersistenceFailure (save or load failed)

Every error leaves the ledger untouched. Callers test the kind with
errors.Is against the sentinels and pull details with errors.As:

    var dup *loans.DuplicateLoanError
    if errors.As(err, &dup) {
        fmt.Println("already lent as loan", dup.ExistingID)
    }
*/
package loans

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateLoan is returned when the same title is already lent to
	// the same borrower.
	ErrDuplicateLoan = errors.New("duplicate loan")

	// ErrLoanNotFound is returned when no active loan matches a return.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrPersistenceFailure is returned when the state store cannot load or
	// save. The in-memory state is left as it was before the operation.
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Field names reported by InvalidInputError.
const (
	FieldTitle       = "title"
	FieldBorrower    = "borrower"
	FieldAllowedDays = "allowed_days"
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

type DuplicateLoanError struct {
	Title      string
	Borrower   string
	ExistingID LoanID
}

func (e *DuplicateLoanError) Error() string {
	return fmt.Sprintf("%q is already lent to %s (loan %d)", e.Title, e.Borrower, e.ExistingID)
}

func (e *DuplicateLoanError) Unwrap() error { return ErrDuplicateLoan }

type LoanNotFoundError struct {
	Title    string
	Borrower string
}

func (e *LoanNotFoundError) Error() string {
	return fmt.Sprintf("no active loan of %q for %s", e.Title, e.Borrower)
}

func (e *LoanNotFoundError) Unwrap() error { return ErrLoanNotFound }

// PersistenceError wraps the store error that aborted Op.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrPersistenceFailure, e.Err)
}

// Unwrap exposes both the sentinel and the store's own error.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistenceFailure, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the caller can fix err by changing its input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicateLoan) ||
		errors.Is(err, ErrLoanNotFound)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound)
}
