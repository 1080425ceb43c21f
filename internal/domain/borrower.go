package domain

import "time"

type Borrower struct {
	ID      int64
	Name    string
	Phone   string
	Address string

	// Identity document; the number is immutable once set.
	DocumentType   string
	DocumentNumber string

	GuarantorName    string
	GuarantorPhone   string
	GuarantorAddress string

	Notes    string
	PhotoRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}
