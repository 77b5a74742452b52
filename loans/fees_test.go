package loans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDaysLate(t *testing.T) {
	due := NewDate(2025, time.March, 10)

	tests := []struct {
		name string
		asOf Date
		want int
	}{
		{"well before", NewDate(2025, time.March, 1), 0},
		{"day before", NewDate(2025, time.March, 9), 0},
		{"same day", due, 0},
		{"next day", NewDate(2025, time.March, 11), 1},
		{"into next month", NewDate(2025, time.April, 2), 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysLate(due, tt.asOf))
		})
	}
}

func TestDaysLate_AcrossYearAndLeapDay(t *testing.T) {
	assert.Equal(t, 7, DaysLate(NewDate(2025, time.December, 28), NewDate(2026, time.January, 4)))
	assert.Equal(t, 2, DaysLate(NewDate(2024, time.February, 28), NewDate(2024, time.March, 1)))
	assert.Equal(t, 1, DaysLate(NewDate(2025, time.February, 28), NewDate(2025, time.March, 1)))
}

func TestFine(t *testing.T) {
	rate := DefaultFinePerDay

	assert.True(t, Fine(0, rate).IsZero())
	assert.True(t, Fine(-4, rate).IsZero())
	assert.Equal(t, "0.50", Fine(1, rate).StringFixed(2))
	assert.Equal(t, "1.50", Fine(3, rate).StringFixed(2))
	assert.Equal(t, "182.50", Fine(365, rate).StringFixed(2))
}

func returned(daysLate int) ReturnRecord {
	return ReturnRecord{
		DaysLate: daysLate,
		Fine:     Fine(daysLate, DefaultFinePerDay),
		Status:   StatusFor(daysLate),
	}
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil, nil, decimal.Zero)

	assert.Equal(t, Statistics{SessionFines: decimal.Zero, MeanDaysLate: decimal.Zero}, stats)
}

func TestAggregate_CountsAndMean(t *testing.T) {
	// GIVEN: Returns 0, 3 and 0 days late, one loan still active
	// THEN: 2 on time, 1 late, mean 1.0
	history := []ReturnRecord{returned(0), returned(3), returned(0)}
	active := []Loan{{ID: 9}}

	stats := Aggregate(active, history, decimal.RequireFromString("1.50"))

	assert.Equal(t, 1, stats.ActiveLoans)
	assert.Equal(t, 3, stats.TotalReturns)
	assert.Equal(t, 2, stats.OnTimeReturns)
	assert.Equal(t, 1, stats.LateReturns)
	assert.Equal(t, "1.50", stats.SessionFines.StringFixed(2))
	assert.Equal(t, "1.0", stats.MeanDaysLate.StringFixed(1))
}

func TestAggregate_MeanRoundsToOneDecimal(t *testing.T) {
	tests := []struct {
		days []int
		want string
	}{
		{[]int{1, 0, 0}, "0.3"},
		{[]int{2, 0, 0}, "0.7"},
		{[]int{1, 2}, "1.5"},
		{[]int{0, 0, 0, 0}, "0.0"},
		{[]int{10}, "10.0"},
	}

	for _, tt := range tests {
		var history []ReturnRecord
		for _, d := range tt.days {
			history = append(history, returned(d))
		}
		stats := Aggregate(nil, history, decimal.Zero)
		assert.Equal(t, tt.want, stats.MeanDaysLate.StringFixed(1), "days=%v", tt.days)
	}
}

func TestProjectOverdue(t *testing.T) {
	asOf := NewDate(2025, time.March, 20)
	active := []Loan{
		{ID: 1, Title: "Late", DueDate: NewDate(2025, time.March, 15)},
		{ID: 2, Title: "Due today", DueDate: asOf},
		{ID: 3, Title: "Future", DueDate: NewDate(2025, time.April, 1)},
		{ID: 4, Title: "Very late", DueDate: NewDate(2025, time.February, 18)},
	}

	overdue := ProjectOverdue(active, asOf, DefaultFinePerDay)

	if assert.Len(t, overdue, 2) {
		assert.Equal(t, LoanID(1), overdue[0].ID)
		assert.Equal(t, 5, overdue[0].DaysLate)
		assert.Equal(t, "2.50", overdue[0].Fine.StringFixed(2))
		assert.Equal(t, asOf, overdue[0].AsOf)

		assert.Equal(t, LoanID(4), overdue[1].ID)
		assert.Equal(t, 30, overdue[1].DaysLate)
	}
}

func TestLedgerState_Normalize(t *testing.T) {
	s := LedgerState{
		Active:    []Loan{{ID: 3}},
		History:   []ReturnRecord{{Loan: Loan{ID: 7}}},
		OpCounter: 1,
	}
	s.normalize()
	assert.Equal(t, int64(7), s.OpCounter)

	s.OpCounter = 12
	s.normalize()
	assert.Equal(t, int64(12), s.OpCounter, "never lowered")
}

func TestLedgerState_CloneSharesNothing(t *testing.T) {
	s := LedgerState{Active: []Loan{{ID: 1, Title: "A"}}}

	c := s.Clone()
	c.Active[0].Title = "B"
	c.Active = append(c.Active, Loan{ID: 2})

	assert.Equal(t, "A", s.Active[0].Title)
	assert.Len(t, s.Active, 1)
}
