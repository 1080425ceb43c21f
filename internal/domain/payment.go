package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoredStatus is the persisted payment state. Only the terminal fact is
// stored; time-relative labels (missed, due_today, due_soon) are computed on
// read by ClassifyStatus so they can never go stale.
type StoredStatus string

const (
	StatusUpcoming  StoredStatus = "upcoming"
	StatusCollected StoredStatus = "collected"
)

type Payment struct {
	ID      int64
	LoanID  int64
	DueDate time.Time

	// Amount is fixed at schedule-generation time and never changed by
	// collection.
	Amount decimal.Decimal

	Status        StoredStatus
	PaidDate      *time.Time
	PaidAmount    decimal.Decimal
	DueAmount     decimal.Decimal
	PaymentMethod string
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time
}
