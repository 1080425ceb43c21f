package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validLoan(strategy Strategy) *Loan {
	l := &Loan{
		BorrowerID: 1,
		Principal:  decimal.NewFromInt(12000),
		Strategy:   strategy,
		StartDate:  date(2025, time.January, 1),
	}
	switch strategy {
	case StrategyEMI:
		l.TenureMonths = 12
		l.EMIAmount = decimal.NewFromInt(1000)
	case StrategyFlat:
		l.FlatMonthlyAmount = decimal.NewFromInt(2000)
	case StrategyGoldSilver:
		l.MetalType = MetalGold
		l.MetalWeight = 20
		l.MetalPurity = 91.6
	}
	return l
}

func TestLoanValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Loan)
		wantField string
	}{
		{"valid emi", func(l *Loan) {}, ""},
		{"missing borrower", func(l *Loan) { l.BorrowerID = 0 }, "borrower_id"},
		{"zero principal", func(l *Loan) { l.Principal = decimal.Zero }, "amount"},
		{"negative principal", func(l *Loan) { l.Principal = decimal.NewFromInt(-5) }, "amount"},
		{"unknown strategy", func(l *Loan) { l.Strategy = "weekly" }, "loan_strategy"},
		{"missing start date", func(l *Loan) { l.StartDate = time.Time{} }, "start_date"},
		{"emi without tenure", func(l *Loan) { l.TenureMonths = 0 }, "tenure"},
		{"emi without installment amount", func(l *Loan) { l.EMIAmount = decimal.Zero }, "custom_emi_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLoan(StrategyEMI)
			tt.mutate(l)
			err := l.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestLoanValidateFlat(t *testing.T) {
	l := validLoan(StrategyFlat)
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	l.FlatMonthlyAmount = decimal.Zero
	var verr *ValidationError
	if err := l.Validate(); !errors.As(err, &verr) || verr.Field != "flat_monthly_amount" {
		t.Fatalf("expected flat_monthly_amount validation error, got %v", err)
	}
}

func TestLoanValidateGoldSilver(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Loan)
		wantField string
	}{
		{"valid gold", func(l *Loan) {}, ""},
		{"valid silver", func(l *Loan) { l.MetalType = MetalSilver }, ""},
		{"unknown metal", func(l *Loan) { l.MetalType = "platinum" }, "metal_type"},
		{"zero weight", func(l *Loan) { l.MetalWeight = 0 }, "metal_weight"},
		{"purity over 100", func(l *Loan) { l.MetalPurity = 101 }, "metal_purity"},
		{"zero purity", func(l *Loan) { l.MetalPurity = 0 }, "metal_purity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLoan(StrategyGoldSilver)
			tt.mutate(l)
			err := l.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestLoanValidateCustomNeedsNoParams(t *testing.T) {
	if err := validLoan(StrategyCustom).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestNetWeight(t *testing.T) {
	if got := NetWeight(20, 91.6); math.Abs(got-18.32) > 1e-9 {
		t.Errorf("NetWeight(20, 91.6) = %v, want 18.32", got)
	}
	if got := NetWeight(10, 100); got != 10 {
		t.Errorf("NetWeight(10, 100) = %v, want 10", got)
	}
}

func TestSchedulePolicy(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     SchedulePolicy
	}{
		{StrategyEMI, PolicyFixedTerm},
		{StrategyFlat, PolicyOpenEnded},
		{StrategyCustom, PolicyOpenEnded},
		{StrategyGoldSilver, PolicyOpenEnded},
	}
	for _, tt := range tests {
		l := &Loan{Strategy: tt.strategy}
		if got := l.SchedulePolicy(); got != tt.want {
			t.Errorf("%s: policy = %s, want %s", tt.strategy, got, tt.want)
		}
	}
}

func TestInstallmentAmount(t *testing.T) {
	emi := validLoan(StrategyEMI)
	if amt, ok := emi.InstallmentAmount(); !ok || !amt.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("emi installment = %s, %v", amt, ok)
	}

	flat := validLoan(StrategyFlat)
	if amt, ok := flat.InstallmentAmount(); !ok || !amt.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("flat installment = %s, %v", amt, ok)
	}

	if _, ok := validLoan(StrategyCustom).InstallmentAmount(); ok {
		t.Error("custom loans have no strategy-implied installment")
	}
	if _, ok := validLoan(StrategyGoldSilver).InstallmentAmount(); ok {
		t.Error("gold_silver loans have no strategy-implied installment")
	}
}
