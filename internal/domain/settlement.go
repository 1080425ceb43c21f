package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpectedInstallment is the amount a single collection is measured against:
// the strategy-implied installment for EMI/FLAT loans, the payment's own
// scheduled amount otherwise.
func ExpectedInstallment(l *Loan, p *Payment) decimal.Decimal {
	if amt, ok := l.InstallmentAmount(); ok {
		return amt
	}
	return p.Amount
}

// ApplyCollection records money against a scheduled payment. The shortfall
// (due amount) is recomputed from the strategy-expected installment; a
// payment only reaches collected state once the shortfall is zero. Partial
// payments stay in upcoming stored state and surface as due_soon through
// ClassifyStatus until settled.
//
// Must run inside the same transaction that persists the payment so two
// concurrent collections cannot both derive the due amount from a stale read.
func ApplyCollection(p *Payment, l *Loan, paidAmount decimal.Decimal, paidDate time.Time, method, notes string) error {
	if p.Status == StatusCollected {
		return ErrInvalidState
	}
	if !paidAmount.IsPositive() {
		return &ValidationError{Field: "paid_amount", Message: "paid_amount must be positive"}
	}
	if paidDate.IsZero() {
		return &ValidationError{Field: "paid_date", Message: "paid_date is required"}
	}

	expected := ExpectedInstallment(l, p)

	paid := RoundMoney(paidAmount)
	due := expected.Sub(paid)
	if due.IsNegative() {
		due = decimal.Zero
	}

	d := DateOnly(paidDate)
	p.PaidDate = &d
	p.PaidAmount = paid
	p.DueAmount = due
	p.PaymentMethod = method
	if notes != "" {
		p.Notes = notes
	}

	if due.IsZero() {
		p.Status = StatusCollected
	} else {
		p.Status = StatusUpcoming
	}
	return nil
}

// ApplySettlement closes out an outstanding shortfall in one lump sum.
// Settlement notes are appended, not overwritten.
func ApplySettlement(p *Payment, settlementDate time.Time, notes string) error {
	if !p.DueAmount.IsPositive() {
		return ErrInvalidState
	}
	if settlementDate.IsZero() {
		return &ValidationError{Field: "settlement_date", Message: "settlement_date is required"}
	}

	p.PaidAmount = p.PaidAmount.Add(p.DueAmount)
	p.DueAmount = decimal.Zero
	p.Status = StatusCollected

	d := DateOnly(settlementDate)
	p.PaidDate = &d

	if notes != "" {
		if p.Notes != "" {
			p.Notes = p.Notes + "; " + notes
		} else {
			p.Notes = notes
		}
	}
	return nil
}
