package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lendledger/internal/clients"
	"lendledger/internal/domain"
)

type LoanStore interface {
	CreateWithSchedule(ctx context.Context, loan *domain.Loan, payments []domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Loan, error)
	UpdateStatus(ctx context.Context, id int64, status domain.LoanStatus) error
	Delete(ctx context.Context, id int64) error
}

type ScheduleStore interface {
	ExtendSchedule(
		ctx context.Context,
		loanID int64,
		build func(loan *domain.Loan, lastDue *time.Time, existing map[time.Time]bool) ([]domain.Payment, error),
	) ([]domain.Payment, error)
}

type LoanService struct {
	loans    LoanStore
	schedule ScheduleStore
	cache    *clients.RedisClient
	ws       *clients.WebSocketClient
	log      *zap.Logger
	now      func() time.Time
}

func NewLoanService(loans LoanStore, schedule ScheduleStore, cache *clients.RedisClient, ws *clients.WebSocketClient, log *zap.Logger) *LoanService {
	return &LoanService{
		loans:    loans,
		schedule: schedule,
		cache:    cache,
		ws:       ws,
		log:      log,
		now:      time.Now,
	}
}

type CreateLoanInput struct {
	BorrowerID int64
	Amount     decimal.Decimal
	Strategy   domain.Strategy
	StartDate  time.Time

	Tenure    int
	EMIAmount decimal.Decimal

	FlatMonthlyAmount decimal.Decimal

	MetalType   string
	MetalWeight float64
	MetalPurity float64
}

// CreateLoan validates the strategy parameters, generates the initial
// schedule and persists loan and schedule in one transaction. A validation
// failure rejects the loan before any payment row is produced.
func (s *LoanService) CreateLoan(ctx context.Context, in CreateLoanInput) (*domain.Loan, []domain.Payment, error) {
	loan := &domain.Loan{
		BorrowerID:        in.BorrowerID,
		Principal:         domain.RoundMoney(in.Amount),
		Strategy:          in.Strategy,
		StartDate:         domain.DateOnly(in.StartDate),
		Status:            domain.LoanActive,
		TenureMonths:      in.Tenure,
		EMIAmount:         domain.RoundMoney(in.EMIAmount),
		FlatMonthlyAmount: domain.RoundMoney(in.FlatMonthlyAmount),
		MetalType:         in.MetalType,
		MetalWeight:       in.MetalWeight,
		MetalPurity:       in.MetalPurity,
	}

	if err := loan.Validate(); err != nil {
		return nil, nil, err
	}
	if loan.Strategy == domain.StrategyGoldSilver {
		loan.MetalNetWeight = domain.NetWeight(loan.MetalWeight, loan.MetalPurity)
	}

	payments := domain.InitialSchedule(loan)

	if err := s.loans.CreateWithSchedule(ctx, loan, payments); err != nil {
		return nil, nil, err
	}

	invalidateDelinquency(ctx, s.cache, s.log, loan.BorrowerID, s.now())
	s.log.Info("loan created",
		zap.Int64("loan_id", loan.ID),
		zap.Int64("borrower_id", loan.BorrowerID),
		zap.String("strategy", string(loan.Strategy)),
		zap.Int("scheduled_payments", len(payments)))

	return loan, payments, nil
}

func (s *LoanService) Get(ctx context.Context, id int64) (*domain.Loan, error) {
	return s.loans.GetByID(ctx, id)
}

func (s *LoanService) ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Loan, error) {
	return s.loans.ListByBorrower(ctx, borrowerID)
}

func (s *LoanService) UpdateStatus(ctx context.Context, id int64, status domain.LoanStatus) error {
	if !domain.ValidLoanStatus(status) {
		return &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown loan status %q", status)}
	}
	return s.loans.UpdateStatus(ctx, id, status)
}

// Delete removes the loan and all its payments atomically.
func (s *LoanService) Delete(ctx context.Context, id int64) error {
	loan, err := s.loans.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.loans.Delete(ctx, id); err != nil {
		return err
	}
	invalidateDelinquency(ctx, s.cache, s.log, loan.BorrowerID, s.now())
	return nil
}

// ExtendScheduleBulk appends months further monthly payments, continuing one
// month after the loan's last due date unless an explicit first due date is
// supplied. The amount defaults to the strategy-implied installment; CUSTOM
// and GOLD_SILVER loans have none and require an explicit amount. Due dates
// already scheduled are skipped rather than duplicated.
func (s *LoanService) ExtendScheduleBulk(ctx context.Context, loanID int64, months int, amount *decimal.Decimal, firstDue *time.Time) ([]domain.Payment, error) {
	if months <= 0 {
		return nil, &domain.ValidationError{Field: "months", Message: "months must be a positive number"}
	}

	var borrowerID int64
	created, err := s.schedule.ExtendSchedule(ctx, loanID, func(loan *domain.Loan, lastDue *time.Time, existing map[time.Time]bool) ([]domain.Payment, error) {
		borrowerID = loan.BorrowerID

		installment := decimal.Zero
		if amount != nil {
			installment = *amount
		} else if implied, ok := loan.InstallmentAmount(); ok {
			installment = implied
		} else {
			return nil, &domain.ValidationError{
				Field:   "custom_amount",
				Message: fmt.Sprintf("%s loans have no installment amount, custom_amount is required", loan.Strategy),
			}
		}
		if !installment.IsPositive() {
			return nil, &domain.ValidationError{Field: "custom_amount", Message: "amount must be positive"}
		}

		var first time.Time
		switch {
		case firstDue != nil:
			first = *firstDue
		case lastDue != nil:
			first = lastDue.AddDate(0, 1, 0)
		default:
			first = domain.DateOnly(loan.StartDate).AddDate(0, 1, 0)
		}

		batch := domain.ContinueSchedule(loan, first, months, installment)

		out := batch[:0]
		for _, p := range batch {
			if existing[p.DueDate] {
				continue
			}
			out = append(out, p)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateDelinquency(ctx, s.cache, s.log, borrowerID, s.now())
	if s.ws != nil {
		_ = s.ws.NotifyScheduleExtended(ctx, loanID, len(created))
	}
	s.log.Info("schedule extended", zap.Int64("loan_id", loanID), zap.Int("added", len(created)))

	return created, nil
}

// AddCustomPayment appends a single payment with an explicit amount and due
// date. A due date on or before today records a payment that already
// happened: the row is created in collected state with the due date as paid
// date. A payment already scheduled for the same due date is a conflict.
func (s *LoanService) AddCustomPayment(ctx context.Context, loanID int64, amount decimal.Decimal, dueDate time.Time, notes string) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if dueDate.IsZero() {
		return nil, &domain.ValidationError{Field: "due_date", Message: "due_date is required"}
	}

	var borrowerID int64
	created, err := s.schedule.ExtendSchedule(ctx, loanID, func(loan *domain.Loan, lastDue *time.Time, existing map[time.Time]bool) ([]domain.Payment, error) {
		borrowerID = loan.BorrowerID

		due := domain.DateOnly(dueDate)
		if existing[due] {
			return nil, fmt.Errorf("payment already scheduled for %s: %w", due.Format("2006-01-02"), domain.ErrInvalidState)
		}

		p := domain.Payment{
			LoanID:     loanID,
			DueDate:    due,
			Amount:     domain.RoundMoney(amount),
			Status:     domain.StatusUpcoming,
			PaidAmount: decimal.Zero,
			DueAmount:  decimal.Zero,
			Notes:      notes,
		}

		if !due.After(domain.DateOnly(s.now())) {
			d := due
			p.Status = domain.StatusCollected
			p.PaidDate = &d
			p.PaidAmount = p.Amount
		}

		return []domain.Payment{p}, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateDelinquency(ctx, s.cache, s.log, borrowerID, s.now())
	if s.ws != nil {
		_ = s.ws.NotifyScheduleExtended(ctx, loanID, 1)
	}

	return &created[0], nil
}
