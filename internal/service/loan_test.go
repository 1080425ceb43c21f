package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lendledger/internal/domain"
)

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeLoanStore struct {
	loans    map[int64]*domain.Loan
	payments []domain.Payment

	nextLoanID    int64
	nextPaymentID int64
}

func newFakeLoanStore() *fakeLoanStore {
	return &fakeLoanStore{loans: map[int64]*domain.Loan{}}
}

func (f *fakeLoanStore) CreateWithSchedule(ctx context.Context, loan *domain.Loan, payments []domain.Payment) error {
	f.nextLoanID++
	loan.ID = f.nextLoanID
	f.loans[loan.ID] = loan
	for i := range payments {
		f.nextPaymentID++
		payments[i].ID = f.nextPaymentID
		payments[i].LoanID = loan.ID
		f.payments = append(f.payments, payments[i])
	}
	return nil
}

func (f *fakeLoanStore) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	loan, ok := f.loans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *loan
	return &cp, nil
}

func (f *fakeLoanStore) ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Loan, error) {
	var out []domain.Loan
	for _, l := range f.loans {
		if l.BorrowerID == borrowerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLoanStore) UpdateStatus(ctx context.Context, id int64, status domain.LoanStatus) error {
	loan, ok := f.loans[id]
	if !ok {
		return domain.ErrNotFound
	}
	loan.Status = status
	return nil
}

func (f *fakeLoanStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.loans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.loans, id)
	kept := f.payments[:0]
	for _, p := range f.payments {
		if p.LoanID != id {
			kept = append(kept, p)
		}
	}
	f.payments = kept
	return nil
}

func (f *fakeLoanStore) ExtendSchedule(
	ctx context.Context,
	loanID int64,
	build func(loan *domain.Loan, lastDue *time.Time, existing map[time.Time]bool) ([]domain.Payment, error),
) ([]domain.Payment, error) {
	loan, ok := f.loans[loanID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	existing := map[time.Time]bool{}
	var lastDue *time.Time
	for _, p := range f.payments {
		if p.LoanID != loanID {
			continue
		}
		d := domain.DateOnly(p.DueDate)
		existing[d] = true
		if lastDue == nil || d.After(*lastDue) {
			dd := d
			lastDue = &dd
		}
	}

	batch, err := build(loan, lastDue, existing)
	if err != nil {
		return nil, err
	}
	for i := range batch {
		f.nextPaymentID++
		batch[i].ID = f.nextPaymentID
		f.payments = append(f.payments, batch[i])
	}
	return batch, nil
}

func newTestLoanService(store *fakeLoanStore) *LoanService {
	svc := NewLoanService(store, store, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return testDate(2025, time.June, 15) }
	return svc
}

func TestLoanService_CreateLoan_EMI(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)

	loan, payments, err := svc.CreateLoan(context.Background(), CreateLoanInput{
		BorrowerID: 7,
		Amount:     decimal.NewFromInt(12000),
		Strategy:   domain.StrategyEMI,
		StartDate:  testDate(2025, time.February, 1),
		Tenure:     12,
		EMIAmount:  decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if loan.ID == 0 {
		t.Fatal("expected loan id to be assigned")
	}
	if loan.Status != domain.LoanActive {
		t.Errorf("status = %q, want active", loan.Status)
	}
	if len(payments) != 12 {
		t.Fatalf("got %d payments, want 12", len(payments))
	}
	if got := payments[0].DueDate; !got.Equal(testDate(2025, time.March, 1)) {
		t.Errorf("first due date = %v, want 2025-03-01", got)
	}
	if len(store.payments) != 12 {
		t.Errorf("store has %d payments, want 12", len(store.payments))
	}
}

func TestLoanService_CreateLoan_RejectsInvalid(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)

	_, _, err := svc.CreateLoan(context.Background(), CreateLoanInput{
		BorrowerID: 7,
		Amount:     decimal.NewFromInt(5000),
		Strategy:   "quarterly",
		StartDate:  testDate(2025, time.February, 1),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(store.loans) != 0 || len(store.payments) != 0 {
		t.Error("nothing should be persisted on validation failure")
	}
}

func TestLoanService_CreateLoan_GoldComputesNetWeight(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)

	loan, payments, err := svc.CreateLoan(context.Background(), CreateLoanInput{
		BorrowerID:  3,
		Amount:      decimal.NewFromInt(50000),
		Strategy:    domain.StrategyGoldSilver,
		StartDate:   testDate(2025, time.January, 10),
		MetalType:   domain.MetalGold,
		MetalWeight: 20,
		MetalPurity: 91.6,
	})
	if err != nil {
		t.Fatalf("CreateLoan: %v", err)
	}
	if got, want := loan.MetalNetWeight, 18.32; got != want {
		t.Errorf("net weight = %v, want %v", got, want)
	}
	if len(payments) != 0 {
		t.Errorf("gold loan should start with an empty schedule, got %d payments", len(payments))
	}
}

func TestLoanService_UpdateStatus_RejectsUnknown(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)

	err := svc.UpdateStatus(context.Background(), 1, "paused")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func seedFlatLoan(t *testing.T, store *fakeLoanStore, svc *LoanService) *domain.Loan {
	t.Helper()
	loan, _, err := svc.CreateLoan(context.Background(), CreateLoanInput{
		BorrowerID:        1,
		Amount:            decimal.NewFromInt(10000),
		Strategy:          domain.StrategyFlat,
		StartDate:         testDate(2025, time.January, 1),
		FlatMonthlyAmount: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return loan
}

func TestLoanService_ExtendScheduleBulk(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)
	loan := seedFlatLoan(t, store, svc)

	created, err := svc.ExtendScheduleBulk(context.Background(), loan.ID, 3, nil, nil)
	if err != nil {
		t.Fatalf("ExtendScheduleBulk: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("got %d new payments, want 3", len(created))
	}
	// continues one month after the existing 2025-02-01 installment
	want := []time.Time{
		testDate(2025, time.March, 1),
		testDate(2025, time.April, 1),
		testDate(2025, time.May, 1),
	}
	for i, p := range created {
		if !p.DueDate.Equal(want[i]) {
			t.Errorf("payment %d due %v, want %v", i, p.DueDate, want[i])
		}
		if !p.Amount.Equal(decimal.NewFromInt(500)) {
			t.Errorf("payment %d amount %s, want 500", i, p.Amount)
		}
	}
}

func TestLoanService_ExtendScheduleBulk_SkipsExisting(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)
	loan := seedFlatLoan(t, store, svc)

	first := testDate(2025, time.February, 1)
	created, err := svc.ExtendScheduleBulk(context.Background(), loan.ID, 2, nil, &first)
	if err != nil {
		t.Fatalf("ExtendScheduleBulk: %v", err)
	}
	// 2025-02-01 is already scheduled; only 2025-03-01 is added
	if len(created) != 1 {
		t.Fatalf("got %d new payments, want 1", len(created))
	}
	if !created[0].DueDate.Equal(testDate(2025, time.March, 1)) {
		t.Errorf("due date = %v, want 2025-03-01", created[0].DueDate)
	}
}

func TestLoanService_ExtendScheduleBulk_CustomNeedsAmount(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)
	loan, _, err := svc.CreateLoan(context.Background(), CreateLoanInput{
		BorrowerID: 1,
		Amount:     decimal.NewFromInt(8000),
		Strategy:   domain.StrategyCustom,
		StartDate:  testDate(2025, time.January, 1),
	})
	if err != nil {
		t.Fatalf("seed loan: %v", err)
	}

	_, err = svc.ExtendScheduleBulk(context.Background(), loan.ID, 2, nil, nil)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "custom_amount" {
		t.Errorf("field = %q, want custom_amount", verr.Field)
	}

	amount := decimal.NewFromInt(750)
	created, err := svc.ExtendScheduleBulk(context.Background(), loan.ID, 2, &amount, nil)
	if err != nil {
		t.Fatalf("ExtendScheduleBulk with amount: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("got %d new payments, want 2", len(created))
	}
}

func TestLoanService_ExtendScheduleBulk_RejectsNonPositiveMonths(t *testing.T) {
	svc := newTestLoanService(newFakeLoanStore())
	if _, err := svc.ExtendScheduleBulk(context.Background(), 1, 0, nil, nil); err == nil {
		t.Fatal("expected error for zero months")
	}
}

func TestLoanService_AddCustomPayment(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)
	loan := seedFlatLoan(t, store, svc)

	// future due date stays upcoming
	p, err := svc.AddCustomPayment(context.Background(), loan.ID, decimal.NewFromInt(300), testDate(2025, time.August, 10), "")
	if err != nil {
		t.Fatalf("AddCustomPayment: %v", err)
	}
	if p.Status != domain.StatusUpcoming {
		t.Errorf("status = %q, want upcoming", p.Status)
	}
	if p.PaidDate != nil {
		t.Error("future payment should have no paid date")
	}

	// past due date records an already collected payment
	past, err := svc.AddCustomPayment(context.Background(), loan.ID, decimal.NewFromInt(200), testDate(2025, time.May, 1), "late entry")
	if err != nil {
		t.Fatalf("AddCustomPayment past: %v", err)
	}
	if past.Status != domain.StatusCollected {
		t.Errorf("status = %q, want collected", past.Status)
	}
	if past.PaidDate == nil || !past.PaidDate.Equal(testDate(2025, time.May, 1)) {
		t.Errorf("paid date = %v, want the due date", past.PaidDate)
	}
	if !past.PaidAmount.Equal(past.Amount) {
		t.Errorf("paid amount = %s, want %s", past.PaidAmount, past.Amount)
	}
}

func TestLoanService_AddCustomPayment_DuplicateDueDate(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)
	loan := seedFlatLoan(t, store, svc)

	_, err := svc.AddCustomPayment(context.Background(), loan.ID, decimal.NewFromInt(300), testDate(2025, time.February, 1), "")
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for duplicate due date, got %v", err)
	}
}

func TestLoanService_Delete(t *testing.T) {
	store := newFakeLoanStore()
	svc := newTestLoanService(store)
	loan := seedFlatLoan(t, store, svc)

	if err := svc.Delete(context.Background(), loan.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.payments) != 0 {
		t.Errorf("payments should cascade, %d left", len(store.payments))
	}
	if err := svc.Delete(context.Background(), loan.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}
