package domain

import "time"

// PaymentStatus is the presentation status derived from a payment's stored
// state and its due date relative to an as-of date.
type PaymentStatus string

const (
	PaymentCollected PaymentStatus = "collected"
	PaymentMissed    PaymentStatus = "missed"
	PaymentDueToday  PaymentStatus = "due_today"
	PaymentDueSoon   PaymentStatus = "due_soon"
	PaymentUpcoming  PaymentStatus = "upcoming"
)

// DueSoonWindowDays is how far ahead of the due date a payment starts showing
// as due_soon.
const DueSoonWindowDays = 3

// ClassifyStatus maps a payment to its presentation status as of the given
// date. It is the single source of truth for "is this late"; callers must not
// re-derive it. Comparison is date-only, the time-of-day of both the due date
// and asOf is ignored.
//
// A payment carrying an outstanding shortfall (due_amount > 0 after a partial
// collection) classifies as due_soon regardless of dates: money has been
// recorded against it but it is not settled.
func ClassifyStatus(p Payment, asOf time.Time) PaymentStatus {
	if p.Status == StatusCollected {
		return PaymentCollected
	}
	if p.DueAmount.IsPositive() {
		return PaymentDueSoon
	}

	due := DateOnly(p.DueDate)
	today := DateOnly(asOf)

	switch {
	case due.Before(today):
		return PaymentMissed
	case due.Equal(today):
		return PaymentDueToday
	case !due.After(today.AddDate(0, 0, DueSoonWindowDays)):
		return PaymentDueSoon
	default:
		return PaymentUpcoming
	}
}

// DateOnly truncates a time to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
