package http

import (
	"net/http"

	"budget/internal/core"
	"budget/internal/ledger"
)

// obligationRequest is the write shape for bills and income sources. The
// kind comes from the route, never from the body; settlement state is only
// reachable through the toggle endpoint.
type obligationRequest struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	DueDay     int     `json:"dueDay"`
	CategoryID string  `json:"categoryId"`
	Active     *bool   `json:"active"`
}

func (req obligationRequest) apply(o *core.Obligation) {
	o.Name = sanitizeInput(req.Name)
	o.Amount = req.Amount
	o.DueDay = req.DueDay
	o.CategoryID = sanitizeInput(req.CategoryID)
	if req.Active != nil {
		o.Active = *req.Active
	}
}

func (s *Server) listObligations(w http.ResponseWriter, r *http.Request, kind core.ObligationKind) {
	obs, err := s.store.ListObligations(r.Context(), ledger.ObligationFilter{Kind: kind})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if obs == nil {
		obs = []core.Obligation{}
	}
	writeJSON(w, http.StatusOK, obs)
}

func (s *Server) createObligation(w http.ResponseWriter, r *http.Request, kind core.ObligationKind) {
	var req obligationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o := core.Obligation{Kind: kind, Active: true}
	req.apply(&o)
	if err := o.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.store.CreateObligation(r.Context(), o)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	s.listObligations(w, r, core.BillKind)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	s.createObligation(w, r, core.BillKind)
}

func (s *Server) handleListIncomeSources(w http.ResponseWriter, r *http.Request) {
	s.listObligations(w, r, core.IncomeKind)
}

func (s *Server) handleCreateIncomeSource(w http.ResponseWriter, r *http.Request) {
	s.createObligation(w, r, core.IncomeKind)
}

// handleUpdateObligation serves both bill and income-source routes: the kind
// and settlement state of the stored record are preserved.
func (s *Server) handleUpdateObligation(w http.ResponseWriter, r *http.Request) {
	var req obligationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	existing, err := s.store.GetObligation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	req.apply(&existing)
	if err := existing.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	updated, err := s.store.UpdateObligation(r.Context(), existing)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteObligation(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteObligation(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type toggleRequest struct {
	Month core.MonthKey `json:"month"`
}

// handleToggleObligation flips the settlement state of an obligation for one
// month and returns the updated record.
func (s *Server) handleToggleObligation(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	month := req.Month
	if month == "" {
		month = core.CurrentMonthKey()
	}
	if !month.Valid() {
		writeError(w, http.StatusBadRequest, "invalid month: want YYYY-MM")
		return
	}

	existing, err := s.store.GetObligation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	existing.Settlement = existing.Settlement.Toggle(month)

	updated, err := s.store.UpdateObligation(r.Context(), existing)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, updated)
}
