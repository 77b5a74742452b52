/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests from the desk page

ROUTE GROUPS:
  /api/loans/*       Loan registration and listing
  /api/returns/*     Returns and history
  /api/statistics    Aggregate figures
  /                  Desk page with the loan and return forms

SECURITY NOTE:
  No authentication middleware. The desk is meant for a single librarian
  on a trusted network.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/loans", func(r chi.Router) {
			r.Get("/", h.ListLoans)
			r.Post("/", h.RegisterLoan)
			r.Get("/overdue", h.ListOverdue)
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", h.ListReturns)
			r.Post("/", h.ReturnLoan)
		})

		r.Get("/statistics", h.GetStatistics)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(deskPage))
	})

	return r
}

const deskPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Library Loan Desk</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Library Loan Desk</h1>

<h2>New loan</h2>
<form method="post" action="/api/loans">
  <label>Title <input name="title" required></label>
  <label>Borrower <input name="borrower" required></label>
  <label>Days <input name="allowed_days" type="number" min="1" required></label>
  <button type="submit">Register loan</button>
</form>

<h2>Return</h2>
<form method="post" action="/api/returns">
  <label>Title <input name="title" required></label>
  <label>Borrower <input name="borrower" required></label>
  <button type="submit">Process return</button>
</form>

<h2>Reports</h2>
<ul>
<li><a href="/api/loans">/api/loans</a> - Active loans</li>
<li><a href="/api/loans/overdue">/api/loans/overdue</a> - Overdue loans</li>
<li><a href="/api/returns">/api/returns</a> - Return history</li>
<li><a href="/api/statistics">/api/statistics</a> - Statistics</li>
</ul>
</body>
</html>`
