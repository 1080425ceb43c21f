package domain

import (
	"testing"
	"time"
)

func upcoming(due time.Time) Payment {
	return Payment{Status: StatusUpcoming, DueDate: due}
}

func collected(due time.Time) Payment {
	return Payment{Status: StatusCollected, DueDate: due}
}

func TestClassifyDelinquency(t *testing.T) {
	asOf := date(2025, time.March, 15)

	tests := []struct {
		name        string
		payments    []Payment
		wantMissed  int
		wantDefault bool
	}{
		{
			name:     "no payments",
			payments: nil,
		},
		{
			name: "single missed payment",
			payments: []Payment{
				upcoming(date(2025, time.February, 1)),
			},
			wantMissed: 1,
		},
		{
			name: "two consecutive missed flags defaulter",
			payments: []Payment{
				upcoming(date(2025, time.January, 1)),
				upcoming(date(2025, time.February, 1)),
			},
			wantMissed:  2,
			wantDefault: true,
		},
		{
			name: "later collected payment resets the streak",
			payments: []Payment{
				upcoming(date(2025, time.January, 1)),
				upcoming(date(2025, time.February, 1)),
				collected(date(2025, time.March, 1)),
			},
			wantMissed:  0,
			wantDefault: false,
		},
		{
			name: "collected between misses keeps streaks separate",
			payments: []Payment{
				upcoming(date(2025, time.January, 1)),
				collected(date(2025, time.February, 1)),
				upcoming(date(2025, time.March, 1)),
			},
			wantMissed:  1,
			wantDefault: false,
		},
		{
			name: "future payments do not count",
			payments: []Payment{
				upcoming(date(2025, time.March, 1)),
				upcoming(date(2025, time.April, 1)),
				upcoming(date(2025, time.May, 1)),
			},
			wantMissed: 1,
		},
		{
			name: "unsorted input is walked in due date order",
			payments: []Payment{
				collected(date(2025, time.March, 1)),
				upcoming(date(2025, time.January, 1)),
				upcoming(date(2025, time.February, 1)),
			},
			wantMissed:  0,
			wantDefault: false,
		},
		{
			name: "three straight misses",
			payments: []Payment{
				upcoming(date(2024, time.December, 1)),
				upcoming(date(2025, time.January, 1)),
				upcoming(date(2025, time.February, 1)),
			},
			wantMissed:  3,
			wantDefault: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyDelinquency(tt.payments, asOf)
			if got.ConsecutiveMissed != tt.wantMissed {
				t.Errorf("consecutive missed = %d, want %d", got.ConsecutiveMissed, tt.wantMissed)
			}
			if got.Defaulter != tt.wantDefault {
				t.Errorf("defaulter = %v, want %v", got.Defaulter, tt.wantDefault)
			}
		})
	}
}

func TestClassifyDelinquencyDoesNotMutateInput(t *testing.T) {
	payments := []Payment{
		collected(date(2025, time.March, 1)),
		upcoming(date(2025, time.January, 1)),
	}

	ClassifyDelinquency(payments, date(2025, time.March, 15))

	if payments[0].Status != StatusCollected || !payments[0].DueDate.Equal(date(2025, time.March, 1)) {
		t.Error("input slice was reordered")
	}
}
