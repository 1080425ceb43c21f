package domain

import (
	"sort"
	"time"
)

// DefaulterThreshold is the number of consecutive missed payments after which
// a borrower is flagged a defaulter.
const DefaulterThreshold = 2

type Delinquency struct {
	Defaulter         bool `json:"defaulter"`
	ConsecutiveMissed int  `json:"consecutive_missed"`
}

// ClassifyDelinquency walks a borrower's payments in ascending due-date order
// keeping a consecutive-missed counter: a collected payment resets it, an
// overdue uncollected payment increments it, a payment not yet due leaves it
// untouched. The borrower is a defaulter when the counter ends at
// DefaulterThreshold or above.
//
// The reset-on-collected walk means a borrower who was transiently over the
// threshold is cleared again by a later collected installment; classification
// reflects the final state of the walk, not any intermediate one.
func ClassifyDelinquency(payments []Payment, asOf time.Time) Delinquency {
	ordered := make([]Payment, len(payments))
	copy(ordered, payments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DueDate.Before(ordered[j].DueDate)
	})

	today := DateOnly(asOf)

	streak := 0
	for _, p := range ordered {
		switch {
		case p.Status == StatusCollected:
			streak = 0
		case DateOnly(p.DueDate).Before(today):
			streak++
		}
	}

	return Delinquency{
		Defaulter:         streak >= DefaulterThreshold,
		ConsecutiveMissed: streak,
	}
}
