package http

import (
	"fmt"
	"net/http"
	"time"

	"budget/internal/core"
)

// transactionRequest is the write shape for transactions. Dates arrive as
// "YYYY-MM-DD" (interpreted in local time) or full RFC 3339 instants.
type transactionRequest struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CategoryID  string  `json:"categoryId"`
}

func (req transactionRequest) toTransaction(w http.ResponseWriter) (core.Transaction, bool) {
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q: want YYYY-MM-DD or RFC 3339", req.Date))
		return core.Transaction{}, false
	}

	t := core.Transaction{
		Amount:      req.Amount,
		Type:        core.TransactionType(sanitizeInput(req.Type)),
		Description: sanitizeInput(req.Description),
		Date:        date,
		CategoryID:  sanitizeInput(req.CategoryID),
	}
	if err := t.Validate(); err != nil {
		writeValidationError(w, err)
		return core.Transaction{}, false
	}
	return t, true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, ok := req.toTransaction(w)
	if !ok {
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, ok := req.toTransaction(w)
	if !ok {
		return
	}
	t.ID = r.PathValue("id")

	updated, err := s.store.UpdateTransaction(r.Context(), t)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
