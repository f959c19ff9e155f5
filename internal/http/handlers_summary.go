package http

import (
	"log/slog"
	"net/http"

	"budget/internal/core"
	applog "budget/internal/log"
)

// handleSummary serves the dashboard snapshot for one month: the KPI block,
// the latest-transaction preview and the outstanding obligation lists.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(w, r)
	if !ok {
		return
	}

	if snap, found := s.summaryCache.Get(string(month)); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "month", month)
		writeJSON(w, http.StatusOK, snap)
		return
	}

	snap, err := s.summaries.SnapshotFor(r.Context(), month, core.PreviewLimit)
	if err != nil {
		s.logs.LogError(r.Context(), "Summary error", err, applog.ComponentSummary, applog.OpSummarize,
			applog.NewFields().WithMonth(string(month)))
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	s.summaryCache.Set(string(month), snap)
	writeJSON(w, http.StatusOK, snap)
}

// handleSavingsReport serves the year-to-date savings series.
func (s *Server) handleSavingsReport(w http.ResponseWriter, r *http.Request) {
	month, ok := monthParam(w, r)
	if !ok {
		return
	}

	if report, found := s.savingsCache.Get(string(month)); found {
		slog.DebugContext(r.Context(), "Savings cache hit", "month", month)
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.summaries.SavingsReportFor(r.Context(), month)
	if err != nil {
		s.logs.LogError(r.Context(), "Savings report error", err, applog.ComponentSavings, applog.OpSummarize,
			applog.NewFields().WithMonth(string(month)))
		writeError(w, http.StatusInternalServerError, "failed to build savings report")
		return
	}

	s.savingsCache.Set(string(month), report)
	writeJSON(w, http.StatusOK, report)
}

type savingsTargetsRequest struct {
	MonthlyTarget float64  `json:"monthlyTarget"`
	YearlyTarget  *float64 `json:"yearlyTarget"`
}

func (s *Server) handleSaveTargets(w http.ResponseWriter, r *http.Request) {
	var req savingsTargetsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg, err := s.savings.SaveTargets(r.Context(), req.MonthlyTarget, req.YearlyTarget)
	if err != nil {
		if isValidationError(err) {
			writeValidationError(w, err)
			return
		}
		slog.ErrorContext(r.Context(), "Save targets error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save targets")
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusOK, cfg)
}

type exportRequest struct {
	Month core.MonthKey `json:"month"`
	Owner string        `json:"owner"`
}

// handleExport enqueues a report export and returns 202; rendering happens
// in the worker.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "export queue not configured")
		return
	}

	var req exportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Month != "" && !req.Month.Valid() {
		writeError(w, http.StatusBadRequest, "invalid month: want YYYY-MM")
		return
	}

	owner := sanitizeInput(req.Owner)
	if err := s.exports.RequestExport(r.Context(), owner, req.Month); err != nil {
		s.logs.LogError(r.Context(), "Export enqueue error", err, applog.ComponentExport, applog.OpExport,
			applog.NewFields().WithMonth(string(req.Month)))
		writeError(w, http.StatusInternalServerError, "failed to enqueue export")
		return
	}

	s.logs.LogExportQueued(r.Context(), owner, string(req.Month))
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "month": req.Month})
}
