package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lendledger/internal/clients"
	"lendledger/internal/domain"
)

type PaymentStore interface {
	UpdateWithLoan(ctx context.Context, paymentID int64, apply func(p *domain.Payment, loan *domain.Loan) error) (*domain.Payment, error)
	ListByLoan(ctx context.Context, loanID int64) ([]domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type PaymentService struct {
	payments PaymentStore
	cache    *clients.RedisClient
	ws       *clients.WebSocketClient
	log      *zap.Logger
	now      func() time.Time
}

func NewPaymentService(payments PaymentStore, cache *clients.RedisClient, ws *clients.WebSocketClient, log *zap.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		cache:    cache,
		ws:       ws,
		log:      log,
		now:      time.Now,
	}
}

type CollectInput struct {
	PaidAmount decimal.Decimal
	PaidDate   time.Time
	Method     string
	Notes      string
}

// Collect records money against a scheduled payment. The read-modify-write
// runs inside one storage transaction with the payment row locked, so the
// derived due amount can never come from a stale read.
func (s *PaymentService) Collect(ctx context.Context, paymentID int64, in CollectInput) (*domain.Payment, error) {
	var loanID, borrowerID int64
	p, err := s.payments.UpdateWithLoan(ctx, paymentID, func(p *domain.Payment, loan *domain.Loan) error {
		loanID = loan.ID
		borrowerID = loan.BorrowerID
		return domain.ApplyCollection(p, loan, in.PaidAmount, in.PaidDate, in.Method, in.Notes)
	})
	if err != nil {
		return nil, err
	}

	invalidateDelinquency(ctx, s.cache, s.log, borrowerID, s.now())
	if s.ws != nil {
		_ = s.ws.NotifyPaymentCollected(ctx, loanID, p.ID, string(domain.ClassifyStatus(*p, s.now())))
	}
	s.log.Info("payment collected",
		zap.Int64("payment_id", p.ID),
		zap.Int64("loan_id", loanID),
		zap.String("paid_amount", p.PaidAmount.String()),
		zap.String("due_amount", p.DueAmount.String()))

	return p, nil
}

// Settle clears a payment's outstanding shortfall in one lump sum.
func (s *PaymentService) Settle(ctx context.Context, paymentID int64, settlementDate time.Time, notes string) (*domain.Payment, error) {
	var loanID, borrowerID int64
	p, err := s.payments.UpdateWithLoan(ctx, paymentID, func(p *domain.Payment, loan *domain.Loan) error {
		loanID = loan.ID
		borrowerID = loan.BorrowerID
		return domain.ApplySettlement(p, settlementDate, notes)
	})
	if err != nil {
		return nil, err
	}

	invalidateDelinquency(ctx, s.cache, s.log, borrowerID, s.now())
	if s.ws != nil {
		_ = s.ws.NotifyPaymentSettled(ctx, loanID, p.ID)
	}
	s.log.Info("payment settled", zap.Int64("payment_id", p.ID), zap.Int64("loan_id", loanID))

	return p, nil
}

// Delete permanently removes a payment. Irreversible; callers confirm first.
func (s *PaymentService) Delete(ctx context.Context, paymentID int64) error {
	borrowerID, err := s.payments.Delete(ctx, paymentID)
	if err != nil {
		return err
	}
	invalidateDelinquency(ctx, s.cache, s.log, borrowerID, s.now())
	s.log.Info("payment deleted", zap.Int64("payment_id", paymentID))
	return nil
}

// PaymentView pairs a payment with its presentation status as of the time the
// list was read.
type PaymentView struct {
	domain.Payment
	Display domain.PaymentStatus
}

// ListForLoan returns the loan's schedule ordered by due date, each payment
// classified against the current date.
func (s *PaymentService) ListForLoan(ctx context.Context, loanID int64) ([]PaymentView, error) {
	payments, err := s.payments.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, PaymentView{
			Payment: p,
			Display: domain.ClassifyStatus(p, asOf),
		})
	}
	return views, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	return s.payments.GetByID(ctx, paymentID)
}
