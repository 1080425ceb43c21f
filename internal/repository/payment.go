package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendledger/internal/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, loan_id, due_date, amount, status, paid_date,
	paid_amount, due_amount, payment_method, notes, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*domain.Payment, error) {
	var p domain.Payment
	var paidDate sql.NullTime
	err := row.Scan(
		&p.ID,
		&p.LoanID,
		&p.DueDate,
		&p.Amount,
		&p.Status,
		&paidDate,
		&p.PaidAmount,
		&p.DueAmount,
		&p.PaymentMethod,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paidDate.Valid {
		p.PaidDate = &paidDate.Time
	}
	return &p, nil
}

func insertPayment(ctx context.Context, tx *sql.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (loan_id, due_date, amount, status, paid_date,
		paid_amount, due_amount, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	var paidDate any
	if p.PaidDate != nil {
		paidDate = *p.PaidDate
	}

	err := tx.QueryRowContext(ctx, query,
		p.LoanID, p.DueDate, p.Amount, p.Status, paidDate,
		p.PaidAmount, p.DueAmount, p.PaymentMethod, p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID int64) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE loan_id = $1 ORDER BY due_date, id`, loanID)
	if err != nil {
		return nil, fmt.Errorf("list payments for loan %d: %w", loanID, err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *PaymentRepository) ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Payment, error) {
	query := `SELECT p.id, p.loan_id, p.due_date, p.amount, p.status, p.paid_date,
		p.paid_amount, p.due_amount, p.payment_method, p.notes, p.created_at, p.updated_at
		FROM payments p
		JOIN loans l ON l.id = p.loan_id
		WHERE l.borrower_id = $1
		ORDER BY p.due_date, p.id`

	rows, err := r.db.QueryContext(ctx, query, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list payments for borrower %d: %w", borrowerID, err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]domain.Payment, error) {
	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Delete permanently removes a payment and returns the owning borrower's id
// so callers can drop derived caches. There is no soft delete; a second
// delete of the same id reports not found.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var borrowerID int64
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM payments p USING loans l
		 WHERE p.id = $1 AND l.id = p.loan_id
		 RETURNING l.borrower_id`, id).Scan(&borrowerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("delete payment %d: %w", id, err)
	}
	return borrowerID, nil
}

// ExtendSchedule appends payments to a loan inside one transaction. The loan
// row is locked for the duration so two concurrent extensions cannot both
// continue from the same last due date. The build callback receives the loan,
// the current last due date (nil when the loan has no payments yet) and the
// set of due dates already scheduled, and returns the payments to insert.
func (r *PaymentRepository) ExtendSchedule(
	ctx context.Context,
	loanID int64,
	build func(loan *domain.Loan, lastDue *time.Time, existing map[time.Time]bool) ([]domain.Payment, error),
) ([]domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin extend schedule: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, loanID)
	loan, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loan %d: %w", loanID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock loan %d: %w", loanID, err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT due_date FROM payments WHERE loan_id = $1 ORDER BY due_date`, loanID)
	if err != nil {
		return nil, fmt.Errorf("read schedule for loan %d: %w", loanID, err)
	}
	existing := make(map[time.Time]bool)
	var lastDue *time.Time
	for rows.Next() {
		var due time.Time
		if err := rows.Scan(&due); err != nil {
			rows.Close()
			return nil, err
		}
		due = domain.DateOnly(due)
		existing[due] = true
		d := due
		lastDue = &d
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payments, err := build(loan, lastDue, existing)
	if err != nil {
		return nil, err
	}

	for i := range payments {
		payments[i].LoanID = loanID
		if err := insertPayment(ctx, tx, &payments[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit extend schedule: %w", err)
	}
	return payments, nil
}

// UpdateWithLoan runs a read-modify-write of a single payment in one
// transaction with the payment row locked, so two concurrent collections
// cannot both derive the due amount from a stale read. The apply callback
// mutates the payment; the loan is passed for strategy-implied amounts.
func (r *PaymentRepository) UpdateWithLoan(
	ctx context.Context,
	paymentID int64,
	apply func(p *domain.Payment, loan *domain.Loan) error,
) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %d: %w", paymentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock payment %d: %w", paymentID, err)
	}

	loanRow := tx.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, p.LoanID)
	loan, err := scanLoan(loanRow)
	if err != nil {
		return nil, fmt.Errorf("get loan %d for payment %d: %w", p.LoanID, paymentID, err)
	}

	if err := apply(p, loan); err != nil {
		return nil, err
	}

	var paidDate any
	if p.PaidDate != nil {
		paidDate = *p.PaidDate
	}

	query := `UPDATE payments SET status = $1, paid_date = $2, paid_amount = $3,
		due_amount = $4, payment_method = $5, notes = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at`

	err = tx.QueryRowContext(ctx, query,
		p.Status, paidDate, p.PaidAmount, p.DueAmount, p.PaymentMethod, p.Notes, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update payment %d: %w", paymentID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment update: %w", err)
	}
	return p, nil
}

// ReportRow is one line of the schedule statement export: a payment joined
// with its loan strategy and borrower.
type ReportRow struct {
	Payment      domain.Payment
	LoanID       int64
	Strategy     domain.Strategy
	BorrowerID   int64
	BorrowerName string
}

type ReportFilter struct {
	LoanID     *int64
	BorrowerID *int64
}

func (r *PaymentRepository) ListForReport(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	query := `SELECT p.id, p.loan_id, p.due_date, p.amount, p.status, p.paid_date,
		p.paid_amount, p.due_amount, p.payment_method, p.notes, p.created_at, p.updated_at,
		l.strategy, b.id, b.name
		FROM payments p
		JOIN loans l ON l.id = p.loan_id
		JOIN borrowers b ON b.id = l.borrower_id`

	where := ""
	args := []any{}
	if f.LoanID != nil {
		where = " WHERE p.loan_id = $1"
		args = append(args, *f.LoanID)
	} else if f.BorrowerID != nil {
		where = " WHERE b.id = $1"
		args = append(args, *f.BorrowerID)
	}

	rows, err := r.db.QueryContext(ctx, query+where+" ORDER BY b.name, p.loan_id, p.due_date", args...)
	if err != nil {
		return nil, fmt.Errorf("list payments for report: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		var paidDate sql.NullTime
		p := &row.Payment
		if err := rows.Scan(
			&p.ID, &p.LoanID, &p.DueDate, &p.Amount, &p.Status, &paidDate,
			&p.PaidAmount, &p.DueAmount, &p.PaymentMethod, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
			&row.Strategy, &row.BorrowerID, &row.BorrowerName,
		); err != nil {
			return nil, err
		}
		if paidDate.Valid {
			p.PaidDate = &paidDate.Time
		}
		row.LoanID = p.LoanID
		out = append(out, row)
	}
	return out, rows.Err()
}
