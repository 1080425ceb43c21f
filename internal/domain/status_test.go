package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyStatus(t *testing.T) {
	asOf := date(2025, time.March, 15)

	tests := []struct {
		name    string
		payment Payment
		want    PaymentStatus
	}{
		{
			name:    "collected wins regardless of date",
			payment: Payment{Status: StatusCollected, DueDate: date(2024, time.January, 1)},
			want:    PaymentCollected,
		},
		{
			name:    "past due date is missed",
			payment: Payment{Status: StatusUpcoming, DueDate: date(2025, time.March, 14)},
			want:    PaymentMissed,
		},
		{
			name:    "due today",
			payment: Payment{Status: StatusUpcoming, DueDate: date(2025, time.March, 15)},
			want:    PaymentDueToday,
		},
		{
			name:    "one day ahead is due soon",
			payment: Payment{Status: StatusUpcoming, DueDate: date(2025, time.March, 16)},
			want:    PaymentDueSoon,
		},
		{
			name:    "three days ahead is still due soon",
			payment: Payment{Status: StatusUpcoming, DueDate: date(2025, time.March, 18)},
			want:    PaymentDueSoon,
		},
		{
			name:    "four days ahead is upcoming",
			payment: Payment{Status: StatusUpcoming, DueDate: date(2025, time.March, 19)},
			want:    PaymentUpcoming,
		},
		{
			name: "outstanding shortfall shows due soon even when far in the future",
			payment: Payment{
				Status:    StatusUpcoming,
				DueDate:   date(2025, time.June, 1),
				DueAmount: decimal.NewFromInt(400),
			},
			want: PaymentDueSoon,
		},
		{
			name: "outstanding shortfall shows due soon even when overdue",
			payment: Payment{
				Status:    StatusUpcoming,
				DueDate:   date(2025, time.January, 1),
				DueAmount: decimal.NewFromInt(400),
			},
			want: PaymentDueSoon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.payment, asOf); got != tt.want {
				t.Errorf("ClassifyStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyStatusIgnoresTimeOfDay(t *testing.T) {
	p := Payment{
		Status:  StatusUpcoming,
		DueDate: date(2025, time.March, 15),
	}
	asOf := time.Date(2025, time.March, 15, 23, 59, 0, 0, time.UTC)

	if got := ClassifyStatus(p, asOf); got != PaymentDueToday {
		t.Errorf("ClassifyStatus() = %s, want %s", got, PaymentDueToday)
	}
}
