package rest

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"lendledger/internal/domain"
	"lendledger/internal/service"
)

type paymentResponse struct {
	ID            int64  `json:"id"`
	LoanID        int64  `json:"loan_id"`
	DueDate       string `json:"due_date"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	PaidDate      string `json:"paid_date,omitempty"`
	PaidAmount    string `json:"paid_amount"`
	DueAmount     string `json:"due_amount"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// toPaymentResponse renders a payment with the given status label. Handlers
// pass either the stored status or the classified one, depending on whether
// the route reports schedule state.
func toPaymentResponse(p *domain.Payment, status string) paymentResponse {
	resp := paymentResponse{
		ID:            p.ID,
		LoanID:        p.LoanID,
		DueDate:       p.DueDate.Format("2006-01-02"),
		Amount:        p.Amount.String(),
		Status:        status,
		PaidAmount:    p.PaidAmount.String(),
		DueAmount:     p.DueAmount.String(),
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
	if p.PaidDate != nil {
		resp.PaidDate = p.PaidDate.Format("2006-01-02")
	}
	return resp
}

type collectPaymentRequest struct {
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidDate      string          `json:"paid_date"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
}

func (h *Handler) collectPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req collectPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.PaidDate == "" {
		h.badRequest(w, "paid_date is required")
		return
	}
	paidDate, err := parseDate("paid_date", req.PaidDate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.payments.Collect(r.Context(), id, service.CollectInput{
		PaidAmount: req.PaidAmount,
		PaidDate:   paidDate,
		Method:     req.PaymentMethod,
		Notes:      req.Notes,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	// a partial collection stays upcoming in storage but presents as
	// due_soon while the shortfall is outstanding
	status := domain.ClassifyStatus(*p, time.Now())
	h.success(w, "payment collected", toPaymentResponse(p, string(status)))
}

type settlePaymentRequest struct {
	SettlementDate string `json:"settlement_date"`
	Notes          string `json:"notes"`
}

func (h *Handler) settlePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req settlePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.SettlementDate == "" {
		h.badRequest(w, "settlement_date is required")
		return
	}
	settlementDate, err := parseDate("settlement_date", req.SettlementDate)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	p, err := h.payments.Settle(r.Context(), id, settlementDate, req.Notes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "payment settled", toPaymentResponse(p, string(p.Status)))
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.payments.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "payment deleted", nil)
}
