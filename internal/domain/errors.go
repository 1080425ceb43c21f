package domain

import "errors"

var (
	// ErrNotFound is returned when a borrower, loan or payment id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is rejected because the
	// record is not in a state that allows it, e.g. settling a payment with
	// no outstanding due amount.
	ErrInvalidState = errors.New("invalid state")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
