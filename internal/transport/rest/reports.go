package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lendledger/internal/repository"
)

type scheduleReportRequest struct {
	Fields     []string `json:"fields"`
	LoanID     any      `json:"loan_id"`
	BorrowerID any      `json:"borrower_id"`
}

func (h *Handler) startScheduleReport(w http.ResponseWriter, r *http.Request) {
	var req scheduleReportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	loanID, err := toInt64Ptr("loan_id", req.LoanID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	borrowerID, err := toInt64Ptr("borrower_id", req.BorrowerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	reportID, err := h.reports.StartScheduleReport(r.Context(), req.Fields, repository.ReportFilter{
		LoanID:     loanID,
		BorrowerID: borrowerID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.successAccepted(w, "schedule report queued", map[string]any{
		"report_id": reportID,
	})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.GetReports(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "reports", reports)
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "report_id")
	report, err := h.reports.GetReport(r.Context(), reportID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "report", report)
}
