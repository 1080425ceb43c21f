package rest

import (
	"net/http"
	"time"

	"lendledger/internal/domain"
	"lendledger/internal/service"
)

type borrowerRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	DocumentType     string `json:"document_type"`
	DocumentNumber   string `json:"document_number"`
	GuarantorName    string `json:"guarantor_name"`
	GuarantorPhone   string `json:"guarantor_phone"`
	GuarantorAddress string `json:"guarantor_address"`
	Notes            string `json:"notes"`
	PhotoRef         string `json:"photo_ref"`
}

type borrowerUpdateRequest struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	DocumentType     *string `json:"document_type"`
	DocumentNumber   *string `json:"document_number"`
	GuarantorName    *string `json:"guarantor_name"`
	GuarantorPhone   *string `json:"guarantor_phone"`
	GuarantorAddress *string `json:"guarantor_address"`
	Notes            *string `json:"notes"`
	PhotoRef         *string `json:"photo_ref"`
}

type borrowerResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	DocumentType     string `json:"document_type,omitempty"`
	DocumentNumber   string `json:"document_number,omitempty"`
	GuarantorName    string `json:"guarantor_name,omitempty"`
	GuarantorPhone   string `json:"guarantor_phone,omitempty"`
	GuarantorAddress string `json:"guarantor_address,omitempty"`
	Notes            string `json:"notes,omitempty"`
	PhotoRef         string `json:"photo_ref,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func toBorrowerResponse(b *domain.Borrower) borrowerResponse {
	return borrowerResponse{
		ID:               b.ID,
		Name:             b.Name,
		Phone:            b.Phone,
		Address:          b.Address,
		DocumentType:     b.DocumentType,
		DocumentNumber:   b.DocumentNumber,
		GuarantorName:    b.GuarantorName,
		GuarantorPhone:   b.GuarantorPhone,
		GuarantorAddress: b.GuarantorAddress,
		Notes:            b.Notes,
		PhotoRef:         b.PhotoRef,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) createBorrower(w http.ResponseWriter, r *http.Request) {
	var req borrowerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	b := &domain.Borrower{
		Name:             req.Name,
		Phone:            req.Phone,
		Address:          req.Address,
		DocumentType:     req.DocumentType,
		DocumentNumber:   req.DocumentNumber,
		GuarantorName:    req.GuarantorName,
		GuarantorPhone:   req.GuarantorPhone,
		GuarantorAddress: req.GuarantorAddress,
		Notes:            req.Notes,
		PhotoRef:         req.PhotoRef,
	}
	if err := h.borrowers.Create(r.Context(), b); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.successCreated(w, "borrower created", toBorrowerResponse(b))
}

func (h *Handler) listBorrowers(w http.ResponseWriter, r *http.Request) {
	borrowers, err := h.borrowers.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]borrowerResponse, 0, len(borrowers))
	for i := range borrowers {
		out = append(out, toBorrowerResponse(&borrowers[i]))
	}
	h.success(w, "borrowers", out)
}

func (h *Handler) getBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	b, err := h.borrowers.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "borrower", toBorrowerResponse(b))
}

func (h *Handler) updateBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req borrowerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	b, err := h.borrowers.Update(r.Context(), id, service.BorrowerUpdate{
		Name:             req.Name,
		Phone:            req.Phone,
		Address:          req.Address,
		DocumentType:     req.DocumentType,
		DocumentNumber:   req.DocumentNumber,
		GuarantorName:    req.GuarantorName,
		GuarantorPhone:   req.GuarantorPhone,
		GuarantorAddress: req.GuarantorAddress,
		Notes:            req.Notes,
		PhotoRef:         req.PhotoRef,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "borrower updated", toBorrowerResponse(b))
}

func (h *Handler) deleteBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.borrowers.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "borrower deleted", nil)
}

func (h *Handler) listBorrowerLoans(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if _, err := h.borrowers.Get(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	loans, err := h.loans.ListByBorrower(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]loanResponse, 0, len(loans))
	for i := range loans {
		out = append(out, toLoanResponse(&loans[i]))
	}
	h.success(w, "loans", out)
}

func (h *Handler) classifyBorrower(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	d, err := h.borrowers.Classify(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.success(w, "borrower classification", d)
}
