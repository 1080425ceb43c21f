package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lendledger/internal/domain"
	"lendledger/internal/repository"
	"lendledger/internal/service"
)

type BorrowerAPI interface {
	Create(ctx context.Context, b *domain.Borrower) error
	Get(ctx context.Context, id int64) (*domain.Borrower, error)
	List(ctx context.Context) ([]domain.Borrower, error)
	Update(ctx context.Context, id int64, upd service.BorrowerUpdate) (*domain.Borrower, error)
	Delete(ctx context.Context, id int64) error
	Classify(ctx context.Context, borrowerID int64) (domain.Delinquency, error)
}

type LoanAPI interface {
	CreateLoan(ctx context.Context, in service.CreateLoanInput) (*domain.Loan, []domain.Payment, error)
	Get(ctx context.Context, id int64) (*domain.Loan, error)
	ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Loan, error)
	UpdateStatus(ctx context.Context, id int64, status domain.LoanStatus) error
	Delete(ctx context.Context, id int64) error
	ExtendScheduleBulk(ctx context.Context, loanID int64, months int, amount *decimal.Decimal, firstDue *time.Time) ([]domain.Payment, error)
	AddCustomPayment(ctx context.Context, loanID int64, amount decimal.Decimal, dueDate time.Time, notes string) (*domain.Payment, error)
}

type PaymentAPI interface {
	Collect(ctx context.Context, paymentID int64, in service.CollectInput) (*domain.Payment, error)
	Settle(ctx context.Context, paymentID int64, settlementDate time.Time, notes string) (*domain.Payment, error)
	Delete(ctx context.Context, paymentID int64) error
	ListForLoan(ctx context.Context, loanID int64) ([]service.PaymentView, error)
}

type ReportAPI interface {
	StartScheduleReport(ctx context.Context, selected []string, filter repository.ReportFilter) (string, error)
	GetReports(ctx context.Context) ([]service.ReportStatus, error)
	GetReport(ctx context.Context, reportID string) (*service.ReportStatus, error)
}

type Handler struct {
	borrowers BorrowerAPI
	loans     LoanAPI
	payments  PaymentAPI
	reports   ReportAPI
	log       *zap.Logger
}

func NewHandler(borrowers BorrowerAPI, loans LoanAPI, payments PaymentAPI, reports ReportAPI, log *zap.Logger) *Handler {
	return &Handler{
		borrowers: borrowers,
		loans:     loans,
		payments:  payments,
		reports:   reports,
		log:       log,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	if authMiddleware != nil {
		r.Use(authMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.success(w, "ok", nil)
	})

	r.Route("/borrowers", func(r chi.Router) {
		r.Post("/", h.createBorrower)
		r.Get("/", h.listBorrowers)
		r.Get("/{id}", h.getBorrower)
		r.Patch("/{id}", h.updateBorrower)
		r.Delete("/{id}", h.deleteBorrower)
		r.Get("/{id}/loans", h.listBorrowerLoans)
		r.Get("/{id}/classification", h.classifyBorrower)
	})

	r.Route("/loans", func(r chi.Router) {
		r.Post("/", h.createLoan)
		r.Get("/{id}", h.getLoan)
		r.Delete("/{id}", h.deleteLoan)
		r.Post("/{id}/status", h.updateLoanStatus)
		r.Get("/{id}/payments", h.listLoanPayments)
		r.Post("/{id}/payments", h.addCustomPayment)
		r.Post("/{id}/payments/extend", h.extendSchedule)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/{id}/collect", h.collectPayment)
		r.Post("/{id}/settle", h.settlePayment)
		r.Delete("/{id}", h.deletePayment)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Post("/schedule", h.startScheduleReport)
		r.Get("/", h.listReports)
		r.Get("/{report_id}", h.getReport)
	})

	return r
}
