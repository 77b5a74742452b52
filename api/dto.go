/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger's types from the external contract:
  - Dates go out twice: ISO for machines, DD/MM/YYYY for display
  - Money goes out as fixed two-decimal strings ("1.50")

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags. Handlers run the
  validator first; the ledger re-checks trimmed values on its own.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"fmt"

	"github.com/warp/library-loans/loans"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RegisterLoanRequest is the loan form. AllowedDays has no default here:
// the form must always send it.
type RegisterLoanRequest struct {
	Title       string `json:"title" validate:"required"`
	Borrower    string `json:"borrower" validate:"required"`
	AllowedDays *int   `json:"allowed_days" validate:"required,gt=0,lte=36500"`
}

type ReturnLoanRequest struct {
	Title    string `json:"title" validate:"required"`
	Borrower string `json:"borrower" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type LoanDTO struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Borrower       string `json:"borrower"`
	LoanDate       string `json:"loan_date"`
	DueDate        string `json:"due_date"`
	DueDateDisplay string `json:"due_date_display"`
	AllowedDays    int    `json:"allowed_days"`
}

type ReturnDTO struct {
	LoanDTO
	ReceiptID         string `json:"receipt_id"`
	ReturnDate        string `json:"return_date"`
	ReturnDateDisplay string `json:"return_date_display"`
	DaysLate          int    `json:"days_late"`
	Fine              string `json:"fine"`
	Status            string `json:"status"`
	Message           string `json:"message"`
}

type OverdueDTO struct {
	LoanDTO
	AsOf     string `json:"as_of"`
	DaysLate int    `json:"days_late"`
	Fine     string `json:"fine"`
}

type StatisticsDTO struct {
	ActiveLoans   int    `json:"active_loans"`
	TotalReturns  int    `json:"total_returns"`
	OnTimeReturns int    `json:"on_time_returns"`
	LateReturns   int    `json:"late_returns"`
	SessionFines  string `json:"session_fines"`
	MeanDaysLate  string `json:"mean_days_late"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toLoanDTO(l loans.Loan) LoanDTO {
	return LoanDTO{
		ID:             int64(l.ID),
		Title:          l.Title,
		Borrower:       l.Borrower,
		LoanDate:       l.LoanDate.String(),
		DueDate:        l.DueDate.String(),
		DueDateDisplay: l.DueDate.Display(),
		AllowedDays:    l.AllowedDays,
	}
}

func toLoanDTOs(ls []loans.Loan) []LoanDTO {
	dtos := make([]LoanDTO, len(ls))
	for i, l := range ls {
		dtos[i] = toLoanDTO(l)
	}
	return dtos
}

func toReturnDTO(r loans.ReturnRecord) ReturnDTO {
	return ReturnDTO{
		LoanDTO:           toLoanDTO(r.Loan),
		ReceiptID:         r.ReceiptID.String(),
		ReturnDate:        r.ReturnDate.String(),
		ReturnDateDisplay: r.ReturnDate.Display(),
		DaysLate:          r.DaysLate,
		Fine:              r.Fine.StringFixed(2),
		Status:            string(r.Status),
		Message:           returnMessage(r),
	}
}

func toReturnDTOs(rs []loans.ReturnRecord) []ReturnDTO {
	dtos := make([]ReturnDTO, len(rs))
	for i, r := range rs {
		dtos[i] = toReturnDTO(r)
	}
	return dtos
}

func toOverdueDTOs(overdue []loans.OverdueLoan) []OverdueDTO {
	dtos := make([]OverdueDTO, len(overdue))
	for i, o := range overdue {
		dtos[i] = OverdueDTO{
			LoanDTO:  toLoanDTO(o.Loan),
			AsOf:     o.AsOf.String(),
			DaysLate: o.DaysLate,
			Fine:     o.Fine.StringFixed(2),
		}
	}
	return dtos
}

func toStatisticsDTO(s loans.Statistics) StatisticsDTO {
	return StatisticsDTO{
		ActiveLoans:   s.ActiveLoans,
		TotalReturns:  s.TotalReturns,
		OnTimeReturns: s.OnTimeReturns,
		LateReturns:   s.LateReturns,
		SessionFines:  s.SessionFines.StringFixed(2),
		MeanDaysLate:  s.MeanDaysLate.StringFixed(1),
	}
}

func returnMessage(r loans.ReturnRecord) string {
	if r.Status == loans.StatusLate {
		return fmt.Sprintf("Returned %d day(s) late. Fine: $%s", r.DaysLate, r.Fine.StringFixed(2))
	}
	return "Returned on time!"
}
