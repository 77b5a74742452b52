/*
fees.go - Late-fee and statistics calculator

All functions here are pure: they read dates and snapshots, return values,
and never touch a store.

DAYS LATE:
  Counted in calendar days between the due date and the day of return.
  Returning on the due date, or any day before it, is on time. Returning the
  next day is one day late whatever the hour.

FINES:
  daysLate x rate, in decimal. The session total is a running decimal sum so
  0.50 + 0.50 + 0.50 is exactly 1.50.
*/
package loans

import "github.com/shopspring/decimal"

// DefaultFinePerDay is charged for each late day unless the ledger is opened
// with WithFinePerDay.
var DefaultFinePerDay = decimal.RequireFromString("0.50")

// DaysLate returns how many calendar days after due the date asOf is,
// or 0 when asOf is on or before due.
func DaysLate(due, asOf Date) int {
	n := DaysBetween(due, asOf)
	if n < 0 {
		return 0
	}
	return n
}

func Fine(daysLate int, ratePerDay decimal.Decimal) decimal.Decimal {
	if daysLate <= 0 {
		return decimal.Zero
	}
	return ratePerDay.Mul(decimal.NewFromInt(int64(daysLate)))
}

// Aggregate computes the figures shown on the statistics panel.
func Aggregate(active []Loan, history []ReturnRecord, sessionFines decimal.Decimal) Statistics {
	stats := Statistics{
		ActiveLoans:  len(active),
		TotalReturns: len(history),
		SessionFines: sessionFines,
		MeanDaysLate: decimal.Zero,
	}

	totalDaysLate := int64(0)
	for _, r := range history {
		if r.DaysLate > 0 {
			stats.LateReturns++
		} else {
			stats.OnTimeReturns++
		}
		totalDaysLate += int64(r.DaysLate)
	}

	if len(history) > 0 {
		stats.MeanDaysLate = decimal.NewFromInt(totalDaysLate).
			Div(decimal.NewFromInt(int64(len(history)))).
			Round(1)
	}
	return stats
}

// ProjectOverdue lists the active loans that would be charged if returned on
// asOf, in the order given.
func ProjectOverdue(active []Loan, asOf Date, ratePerDay decimal.Decimal) []OverdueLoan {
	var out []OverdueLoan
	for _, l := range active {
		days := DaysLate(l.DueDate, asOf)
		if days == 0 {
			continue
		}
		out = append(out, OverdueLoan{
			Loan:     l,
			AsOf:     asOf,
			DaysLate: days,
			Fine:     Fine(days, ratePerDay),
		})
	}
	return out
}
