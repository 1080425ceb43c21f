package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Strategy names the repayment strategy a loan was issued under. It is fixed
// at loan creation.
type Strategy string

const (
	StrategyEMI        Strategy = "emi"
	StrategyFlat       Strategy = "flat"
	StrategyCustom     Strategy = "custom"
	StrategyGoldSilver Strategy = "gold_silver"
)

// SchedulePolicy describes how a strategy's schedule comes into being:
// a fixed-term schedule is generated in full at loan creation, an open-ended
// one grows over time through the schedule extender.
type SchedulePolicy string

const (
	PolicyFixedTerm SchedulePolicy = "fixed_term"
	PolicyOpenEnded SchedulePolicy = "open_ended"
)

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	LoanDefaulted LoanStatus = "defaulted"
	LoanCancelled LoanStatus = "cancelled"
)

const (
	MetalGold   = "gold"
	MetalSilver = "silver"
)

type Loan struct {
	ID         int64
	BorrowerID int64
	Principal  decimal.Decimal
	Strategy   Strategy
	StartDate  time.Time
	Status     LoanStatus

	// EMI
	TenureMonths int
	EMIAmount    decimal.Decimal

	// FLAT
	FlatMonthlyAmount decimal.Decimal

	// GOLD_SILVER collateral; net weight is derived, not used in scheduling.
	MetalType      string
	MetalWeight    float64
	MetalPurity    float64
	MetalNetWeight float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyEMI, StrategyFlat, StrategyCustom, StrategyGoldSilver:
		return true
	}
	return false
}

func ValidLoanStatus(s LoanStatus) bool {
	switch s {
	case LoanActive, LoanCompleted, LoanDefaulted, LoanCancelled:
		return true
	}
	return false
}

// SchedulePolicy reports whether the loan's schedule is generated up-front or
// grown via the extender.
func (l *Loan) SchedulePolicy() SchedulePolicy {
	if l.Strategy == StrategyEMI {
		return PolicyFixedTerm
	}
	return PolicyOpenEnded
}

// InstallmentAmount returns the strategy-implied per-installment amount.
// The second return is false for strategies without one (CUSTOM,
// GOLD_SILVER), where each payment carries its own amount.
func (l *Loan) InstallmentAmount() (decimal.Decimal, bool) {
	switch l.Strategy {
	case StrategyEMI:
		return l.EMIAmount, true
	case StrategyFlat:
		return l.FlatMonthlyAmount, true
	}
	return decimal.Zero, false
}

// Validate checks the loan and its strategy-specific parameters. It must pass
// before any schedule row is written.
func (l *Loan) Validate() error {
	if l.BorrowerID <= 0 {
		return &ValidationError{Field: "borrower_id", Message: "borrower_id is required"}
	}
	if !l.Principal.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if !ValidStrategy(l.Strategy) {
		return &ValidationError{Field: "loan_strategy", Message: fmt.Sprintf("unknown loan strategy %q", l.Strategy)}
	}
	if l.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Message: "start_date is required"}
	}

	switch l.Strategy {
	case StrategyEMI:
		if l.TenureMonths <= 0 {
			return &ValidationError{Field: "tenure", Message: "tenure must be a positive number of months"}
		}
		if !l.EMIAmount.IsPositive() {
			return &ValidationError{Field: "custom_emi_amount", Message: "custom_emi_amount must be positive"}
		}
	case StrategyFlat:
		if !l.FlatMonthlyAmount.IsPositive() {
			return &ValidationError{Field: "flat_monthly_amount", Message: "flat_monthly_amount must be positive"}
		}
	case StrategyGoldSilver:
		if l.MetalType != MetalGold && l.MetalType != MetalSilver {
			return &ValidationError{Field: "metal_type", Message: "metal_type must be gold or silver"}
		}
		if l.MetalWeight <= 0 {
			return &ValidationError{Field: "metal_weight", Message: "metal_weight must be positive"}
		}
		if l.MetalPurity <= 0 || l.MetalPurity > 100 {
			return &ValidationError{Field: "metal_purity", Message: "metal_purity must be between 0 and 100"}
		}
	}

	return nil
}

// NetWeight computes the effective metal weight from gross weight and purity.
func NetWeight(weight, purity float64) float64 {
	return weight * purity / 100
}
