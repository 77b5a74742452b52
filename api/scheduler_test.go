package api

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/warp/library-loans/loans"
)

type stubOverdue struct {
	loans []loans.OverdueLoan
	calls int
}

func (s *stubOverdue) Overdue() []loans.OverdueLoan {
	s.calls++
	return s.loans
}

func overdueLoan(id loans.LoanID, title string, days int) loans.OverdueLoan {
	return loans.OverdueLoan{
		Loan: loans.Loan{
			ID: id, Title: title, Borrower: "Ana", AllowedDays: 7,
			LoanDate: loans.NewDate(2025, 3, 1), DueDate: loans.NewDate(2025, 3, 8),
		},
		AsOf:     loans.NewDate(2025, 3, 8).AddDays(days),
		DaysLate: days,
		Fine:     loans.Fine(days, loans.DefaultFinePerDay),
	}
}

func TestOverdueScanner_Scan(t *testing.T) {
	// GIVEN: Two loans 3 and 4 days overdue
	// WHEN: One scan runs
	// THEN: Both are logged and the pending fines add up to 3.50
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	reader := &stubOverdue{loans: []loans.OverdueLoan{
		overdueLoan(1, "Don Quijote", 3),
		overdueLoan(2, "Rayuela", 4),
	}}
	scanner := NewOverdueScanner(reader, logger)

	result := scanner.Scan()

	assert.Equal(t, 2, result.Overdue)
	assert.True(t, decimal.RequireFromString("3.5").Equal(result.PendingFines))
	assert.Equal(t, result, scanner.Last())
	out := buf.String()
	assert.Contains(t, out, "loan overdue")
	assert.Contains(t, out, "title=\"Don Quijote\"")
	assert.Contains(t, out, "fine=2.00")
	assert.Contains(t, out, "pending_fines=3.50")
}

func TestOverdueScanner_NothingOverdue(t *testing.T) {
	scanner := NewOverdueScanner(&stubOverdue{}, quietLogger)

	result := scanner.Scan()

	assert.Equal(t, 0, result.Overdue)
	assert.True(t, result.PendingFines.IsZero())
}

func TestOverdueScanner_StartRunsImmediately(t *testing.T) {
	reader := &stubOverdue{loans: []loans.OverdueLoan{overdueLoan(1, "1984", 1)}}
	scanner := NewOverdueScanner(reader, quietLogger)
	scanner.CheckInterval = time.Hour

	scanner.Start()
	assert.Eventually(t, func() bool { return scanner.Last().Overdue == 1 }, time.Second, 10*time.Millisecond)
	scanner.Stop()

	// Stop is idempotent.
	scanner.Stop()
}

func TestOverdueScanner_Disabled(t *testing.T) {
	reader := &stubOverdue{}
	scanner := NewOverdueScanner(reader, quietLogger)
	scanner.CheckInterval = 0

	scanner.Start()
	scanner.Stop()

	assert.Equal(t, 0, reader.calls)
}
