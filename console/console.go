/*
Package console is the interactive, prompt-driven caller of the ledger.

MENU:
  1. Register a new loan   title, borrower, days (blank = default, 7)
  2. Process a return      title, borrower
  3. Daily statistics      figures plus the list of active loans
  4. Active loans
  5. Exit

After every action the session waits for Enter before showing the menu
again. Errors are printed and the session continues; nothing here is fatal
except losing the input stream.
*/
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/warp/library-loans/loans"
)

const DefaultLoanDays = 7

// Session runs the menu loop over one input and one output stream.
type Session struct {
	Ledger      *loans.Ledger
	DefaultDays int

	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

func NewSession(ledger *loans.Ledger, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		Ledger:      ledger,
		DefaultDays: DefaultLoanDays,
		in:          bufio.NewScanner(in),
		out:         out,
		logger:      logger,
	}
}

// errClosed ends the session when input runs out.
var errClosed = errors.New("input closed")

// Run shows the menu until the user exits, input ends, or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.printf("Welcome to the Library Loan Desk!\n\n")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.menu()
		choice, err := s.ask("Choose an option (1-5): ")
		if err != nil {
			return s.closed(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.register(ctx)
		case "2":
			err = s.returnLoan(ctx)
		case "3":
			s.statistics()
		case "4":
			s.activeLoans()
		case "5":
			s.printf("\nThank you for using the Library Loan Desk. Goodbye!\n")
			return nil
		default:
			s.printf("\nInvalid option. Please choose 1 to 5.\n\n")
			continue
		}
		if err != nil {
			return s.closed(err)
		}

		if _, err := s.ask("Press Enter to continue..."); err != nil {
			return s.closed(err)
		}
	}
}

func (s *Session) closed(err error) error {
	if errors.Is(err, errClosed) {
		return nil
	}
	return err
}

func (s *Session) menu() {
	s.printf(`
LIBRARY LOAN DESK - MAIN MENU
==========================================
1. Register a new loan
2. Process a return
3. Daily statistics
4. Active loans
5. Exit
==========================================
`)
}

// =============================================================================
// ACTIONS
// =============================================================================

func (s *Session) register(ctx context.Context) error {
	title, ok, err := s.askRequired("Book title: ", "The title")
	if err != nil || !ok {
		return err
	}
	borrower, ok, err := s.askRequired("Borrower name: ", "The borrower name")
	if err != nil || !ok {
		return err
	}
	raw, err := s.ask(fmt.Sprintf("Loan days (default %d): ", s.DefaultDays))
	if err != nil {
		return err
	}
	days, err := loans.ParseAllowedDays(raw, s.DefaultDays)
	if err != nil {
		s.printf("Error: days must be a positive number.\n")
		return nil
	}

	loan, err := s.Ledger.RegisterLoan(ctx, title, borrower, days)
	if err != nil {
		s.reportError(err)
		return nil
	}

	s.printf("\nLOAN REGISTERED\n")
	s.printf("Book:      %q\n", loan.Title)
	s.printf("Borrower:  %s\n", loan.Borrower)
	s.printf("Due date:  %s\n", loan.DueDate.Display())
	s.printf("Loan ID:   %d\n\n", loan.ID)
	return nil
}

func (s *Session) returnLoan(ctx context.Context) error {
	if len(s.Ledger.ActiveLoans()) == 0 {
		s.printf("\nThere are no active loans to return.\n\n")
		return nil
	}

	title, ok, err := s.askRequired("Title of the book being returned: ", "The title")
	if err != nil || !ok {
		return err
	}
	borrower, ok, err := s.askRequired("Borrower name: ", "The borrower name")
	if err != nil || !ok {
		return err
	}

	rec, err := s.Ledger.ReturnLoan(ctx, title, borrower)
	if err != nil {
		s.reportError(err)
		return nil
	}

	s.printf("\nRETURN PROCESSED\n")
	s.printf("Book:        %q\n", rec.Title)
	s.printf("Borrower:    %s\n", rec.Borrower)
	s.printf("Returned on: %s\n", rec.ReturnDate.Display())
	s.printf("Receipt:     %s\n", rec.ReceiptID)
	if rec.Status == loans.StatusLate {
		s.printf("Days late:   %d\n", rec.DaysLate)
		s.printf("Fine:        $%s\n\n", rec.Fine.StringFixed(2))
	} else {
		s.printf("Returned on time. No fine.\n\n")
	}
	return nil
}

func (s *Session) statistics() {
	stats := s.Ledger.Statistics()

	s.printf("\n========== DAILY STATISTICS ==========\n")
	s.printf("Active loans:         %d\n", stats.ActiveLoans)
	s.printf("Returns processed:    %d\n", stats.TotalReturns)
	s.printf("On-time returns:      %d\n", stats.OnTimeReturns)
	s.printf("Late returns:         %d\n", stats.LateReturns)
	s.printf("Fines collected:      $%s\n", stats.SessionFines.StringFixed(2))
	s.printf("Average days late:    %s\n", stats.MeanDaysLate.StringFixed(1))

	if active := s.Ledger.ActiveLoans(); len(active) > 0 {
		s.printf("\nACTIVE LOANS:\n")
		for _, l := range active {
			s.printf("  - %q - %s (due %s)\n", l.Title, l.Borrower, l.DueDate.Display())
		}
	}
	s.printf("======================================\n\n")
}

func (s *Session) activeLoans() {
	s.printf("\nACTIVE LOANS\n")
	s.printf("====================\n")

	active := s.Ledger.ActiveLoans()
	if len(active) == 0 {
		s.printf("There are no active loans right now.\n\n")
		return
	}
	for i, l := range active {
		s.printf("%d. %q\n", i+1, l.Title)
		s.printf("   Borrower: %s\n", l.Borrower)
		s.printf("   Due date: %s\n", l.DueDate.Display())
		s.printf("   ID: %d\n\n", l.ID)
	}
}

func (s *Session) reportError(err error) {
	var invalid *loans.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		s.printf("\nError: %s.\n\n", invalid.Error())
	case errors.Is(err, loans.ErrDuplicateLoan):
		s.printf("\nError: this book is already lent to that borrower.\n\n")
	case errors.Is(err, loans.ErrLoanNotFound):
		var nf *loans.LoanNotFoundError
		errors.As(err, &nf)
		s.printf("\nError: no active loan of %q for %s.\n\n", nf.Title, nf.Borrower)
	case errors.Is(err, loans.ErrPersistenceFailure):
		s.logger.Error("ledger store unavailable", "error", err)
		s.printf("\nError: the ledger could not be saved. Nothing was changed.\n\n")
	default:
		s.logger.Error("unexpected ledger error", "error", err)
		s.printf("\nError: %v\n\n", err)
	}
}

// =============================================================================
// PROMPTS
// =============================================================================

func (s *Session) ask(prompt string) (string, error) {
	s.printf("%s", prompt)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", errClosed
	}
	return s.in.Text(), nil
}

// askRequired prompts once; a blank answer prints an error and reports
// ok=false so the caller returns to the menu.
func (s *Session) askRequired(prompt, what string) (string, bool, error) {
	v, err := s.ask(prompt)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(v) == "" {
		s.printf("Error: %s must not be empty.\n", what)
		return "", false, nil
	}
	return v, true, nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
