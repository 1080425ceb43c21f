package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds to the smallest currency unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// InitialSchedule builds the ordered payment sequence a loan starts with.
//
// EMI loans get their full tenure up-front, one installment per calendar
// month starting one month after the start date. Each installment is rounded
// independently to two decimal places; the total is deliberately not trued up
// against the principal. FLAT loans get only their first installment, the
// rest are appended by the extender as they come due. Open-ended strategies
// (CUSTOM, GOLD_SILVER) start with no schedule at all.
func InitialSchedule(l *Loan) []Payment {
	switch l.Strategy {
	case StrategyEMI:
		payments := make([]Payment, 0, l.TenureMonths)
		for i := 1; i <= l.TenureMonths; i++ {
			payments = append(payments, Payment{
				LoanID:     l.ID,
				DueDate:    DateOnly(l.StartDate).AddDate(0, i, 0),
				Amount:     RoundMoney(l.EMIAmount),
				Status:     StatusUpcoming,
				PaidAmount: decimal.Zero,
				DueAmount:  decimal.Zero,
			})
		}
		return payments
	case StrategyFlat:
		return []Payment{{
			LoanID:     l.ID,
			DueDate:    DateOnly(l.StartDate).AddDate(0, 1, 0),
			Amount:     RoundMoney(l.FlatMonthlyAmount),
			Status:     StatusUpcoming,
			PaidAmount: decimal.Zero,
			DueAmount:  decimal.Zero,
		}}
	default:
		return nil
	}
}

// ContinueSchedule builds n upcoming payments for the bulk extender, the
// first due at firstDue and each subsequent one a calendar month after the
// previous.
func ContinueSchedule(l *Loan, firstDue time.Time, n int, amount decimal.Decimal) []Payment {
	first := DateOnly(firstDue)
	payments := make([]Payment, 0, n)
	for i := 0; i < n; i++ {
		payments = append(payments, Payment{
			LoanID:     l.ID,
			DueDate:    first.AddDate(0, i, 0),
			Amount:     RoundMoney(amount),
			Status:     StatusUpcoming,
			PaidAmount: decimal.Zero,
			DueAmount:  decimal.Zero,
		})
	}
	return payments
}
