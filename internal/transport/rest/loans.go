package rest

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"lendledger/internal/domain"
	"lendledger/internal/service"
)

type createLoanRequest struct {
	BorrowerID int64           `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
	Strategy   string          `json:"loan_strategy"`
	StartDate  string          `json:"start_date"`

	Tenure    int             `json:"tenure"`
	EMIAmount decimal.Decimal `json:"custom_emi_amount"`

	FlatMonthlyAmount decimal.Decimal `json:"flat_monthly_amount"`

	MetalType   string  `json:"metal_type"`
	MetalWeight float64 `json:"metal_weight"`
	MetalPurity float64 `json:"metal_purity"`
}

type loanResponse struct {
	ID         int64  `json:"id"`
	BorrowerID int64  `json:"borrower_id"`
	Amount     string `json:"amount"`
	Strategy   string `json:"loan_strategy"`
	StartDate  string `json:"start_date"`
	Status     string `json:"status"`

	Tenure    int    `json:"tenure,omitempty"`
	EMIAmount string `json:"custom_emi_amount,omitempty"`

	FlatMonthlyAmount string `json:"flat_monthly_amount,omitempty"`

	MetalType      string  `json:"metal_type,omitempty"`
	MetalWeight    float64 `json:"metal_weight,omitempty"`
	MetalPurity    float64 `json:"metal_purity,omitempty"`
	MetalNetWeight float64 `json:"metal_net_weight,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toLoanResponse(l *domain.Loan) loanResponse {
	resp := loanResponse{
		ID:         l.ID,
		BorrowerID: l.BorrowerID,
		Amount:     l.Principal.String(),
		Strategy:   string(l.Strategy),
		StartDate:  l.StartDate.Format("2006-01-02"),
		Status:     string(l.Status),
		Tenure:     l.TenureMonths,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.Format(time.RFC3339),
	}
	if l.EMIAmount.IsPositive() {
		resp.EMIAmount = l.EMIAmount.String()
	}
	if l.FlatMonthlyAmount.IsPositive() {
		resp.FlatMonthlyAmount = l.FlatMonthlyAmount.String()
	}
	if l.Strategy == domain.StrategyGoldSilver {
		resp.MetalType = l.MetalType
		resp.MetalWeight = l.MetalWeight
		resp.MetalPurity = l.MetalPurity
		resp.MetalNetWeight = l.MetalNetWeight
	}
	return resp
}

func (h *Handler) createLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.StartDate == "" {
		h.badRequest(w, "start_date is required")
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	loan, payments, err := h.loans.CreateLoan(r.Context(), service.CreateLoanInput{
		BorrowerID:        req.BorrowerID,
		Amount:            req.Amount,
		Strategy:          domain.Strategy(req.Strategy),
		StartDate:         startDate,
		Tenure:            req.Tenure,
		EMIAmount:         req.EMIAmount,
		FlatMonthlyAmount: req.FlatMonthlyAmount,
		MetalType:         req.MetalType,
		MetalWeight:       req.MetalWeight,
		MetalPurity:       req.MetalPurity,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	schedule := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		schedule = append(schedule, toPaymentResponse(&payments[i], string(payments[i].Status)))
	}
	h.successCreated(w, "loan created", map[string]any{
		"loan":     toLoanResponse(loan),
		"schedule": schedule,
	})
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	loan, err := h.loans.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "loan", toLoanResponse(loan))
}

func (h *Handler) deleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.loans.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "loan deleted", nil)
}

func (h *Handler) updateLoanStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.loans.UpdateStatus(r.Context(), id, domain.LoanStatus(req.Status)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "loan status updated", map[string]any{"id": id, "status": req.Status})
}

type extendScheduleRequest struct {
	Months       int              `json:"months"`
	CustomAmount *decimal.Decimal `json:"custom_amount"`
	FirstDueDate *string          `json:"first_due_date"`
}

func (h *Handler) extendSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req extendScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	firstDue, err := parseDatePtr("first_due_date", req.FirstDueDate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	created, err := h.loans.ExtendScheduleBulk(r.Context(), id, req.Months, req.CustomAmount, firstDue)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]paymentResponse, 0, len(created))
	for i := range created {
		out = append(out, toPaymentResponse(&created[i], string(created[i].Status)))
	}
	h.successCreated(w, "schedule extended", out)
}

type customPaymentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate string          `json:"due_date"`
	Notes   string          `json:"notes"`
}

func (h *Handler) addCustomPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req customPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.DueDate == "" {
		h.badRequest(w, "due_date is required")
		return
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.loans.AddCustomPayment(r.Context(), id, req.Amount, dueDate, req.Notes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.successCreated(w, "payment added", toPaymentResponse(p, string(p.Status)))
}

func (h *Handler) listLoanPayments(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if _, err := h.loans.Get(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	views, err := h.payments.ListForLoan(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]paymentResponse, 0, len(views))
	for i := range views {
		out = append(out, toPaymentResponse(&views[i].Payment, string(views[i].Display)))
	}
	h.success(w, "payments", out)
}
