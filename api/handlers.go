/*
handlers.go - HTTP handlers for the loan desk

PURPOSE:
  The form-driven caller of the ledger. Each handler parses one submission,
  invokes one ledger operation and renders the result or the error.

ENDPOINTS:
  Loans:
    GET    /api/loans           Active loans in registration order
    POST   /api/loans           Register a loan (allowed_days required)
    GET    /api/loans/overdue   Active loans past due, with projected fines

  Returns:
    GET    /api/returns         Return history in processing order
    POST   /api/returns         Process a return and charge the fine

  Statistics:
    GET    /api/statistics      Counts, session fines, mean days late

REQUEST BODIES:
  application/json or application/x-www-form-urlencoded with the fields
  title, borrower and (for loans) allowed_days.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (the failing field is named in "field")
  - 404: No active loan for that title and borrower
  - 409: Title already lent to that borrower
  - 503: State store unavailable, nothing was changed
  - 500: Anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/warp/library-loans/loans"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *loans.Ledger

	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new handler over ledger.
func NewHandler(ledger *loans.Ledger, logger *slog.Logger) *Handler {
	v := validator.New()
	// Report json field names so errors line up with the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Ledger: ledger, validate: v, logger: logger}
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// ListLoans returns the active loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toLoanDTOs(h.Ledger.ActiveLoans()))
}

// RegisterLoan lends a title to a borrower.
func (h *Handler) RegisterLoan(w http.ResponseWriter, r *http.Request) {
	var req RegisterLoanRequest
	if isForm(r) {
		if err := parseForm(r); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form body", err)
			return
		}
		req.Title = r.PostFormValue("title")
		req.Borrower = r.PostFormValue("borrower")
		days, err := loans.ParseAllowedDays(r.PostFormValue("allowed_days"), 0)
		if err != nil {
			h.writeLedgerError(w, err)
			return
		}
		req.AllowedDays = &days
	} else if err := decodeJSON(r, &req); err != nil {
		h.writeBodyError(w, err)
		return
	}

	if err := h.check(req); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	loan, err := h.Ledger.RegisterLoan(r.Context(), req.Title, req.Borrower, *req.AllowedDays)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanDTO(loan))
}

// ListOverdue returns active loans already past their due date.
func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toOverdueDTOs(h.Ledger.Overdue()))
}

// =============================================================================
// RETURN HANDLERS
// =============================================================================

// ListReturns returns the return history.
func (h *Handler) ListReturns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toReturnDTOs(h.Ledger.History()))
}

// ReturnLoan closes a loan and reports the fine.
func (h *Handler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	var req ReturnLoanRequest
	if isForm(r) {
		if err := parseForm(r); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form body", err)
			return
		}
		req.Title = r.PostFormValue("title")
		req.Borrower = r.PostFormValue("borrower")
	} else if err := decodeJSON(r, &req); err != nil {
		h.writeBodyError(w, err)
		return
	}

	if err := h.check(req); err != nil {
		h.writeLedgerError(w, err)
		return
	}

	rec, err := h.Ledger.ReturnLoan(r.Context(), req.Title, req.Borrower)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReturnDTO(rec))
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetStatistics returns the aggregate figures.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStatisticsDTO(h.Ledger.Statistics()))
}

// =============================================================================
// HELPERS
// =============================================================================

// check runs struct validation and turns the first failure into an
// InvalidInputError.
func (h *Handler) check(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		var reason string
		switch fe.Tag() {
		case "required":
			reason = "is required"
		case "gt":
			reason = "must be a positive number of days"
		case "lte":
			reason = fmt.Sprintf("must be at most %s days", fe.Param())
		default:
			reason = "is invalid"
		}
		return &loans.InvalidInputError{Field: fe.Field(), Reason: reason}
	}
	return err
}

// writeBodyError reports a body that could not be decoded. Field-level type
// mismatches keep their field name.
func (h *Handler) writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, loans.ErrInvalidInput) {
		h.writeLedgerError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body", err)
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	var invalid *loans.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Please fill in every field correctly",
			Field:   invalid.Field,
			Details: invalid.Error(),
		})
	case errors.Is(err, loans.ErrDuplicateLoan):
		writeError(w, http.StatusConflict, "An active loan already exists for this book and borrower", err)
	case errors.Is(err, loans.ErrLoanNotFound):
		writeError(w, http.StatusNotFound, "No active loan found for that book and borrower", err)
	case errors.Is(err, loans.ErrPersistenceFailure):
		h.logger.Error("ledger store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Could not save the ledger, nothing was changed", err)
	default:
		h.logger.Error("unexpected ledger error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// maxFormMemory bounds the multipart bytes kept in memory; the rest spill to disk.
const maxFormMemory = 1 << 20

func isForm(r *http.Request) bool {
	ct := mediaType(r)
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// parseForm fills r.PostForm for both form encodings. ParseForm alone
// leaves multipart bodies unread.
func parseForm(r *http.Request) error {
	if mediaType(r) == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func mediaType(r *http.Request) string {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct
}

// decodeJSON reads a JSON body into v. A value of the wrong type for a
// known field becomes an InvalidInputError naming that field.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		reason := "must be text"
		if typeErr.Field == loans.FieldAllowedDays {
			reason = "must be a whole number"
		}
		return &loans.InvalidInputError{Field: typeErr.Field, Reason: reason}
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
