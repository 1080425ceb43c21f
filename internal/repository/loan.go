package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lendledger/internal/domain"
)

type LoanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

const loanColumns = `id, borrower_id, principal, strategy, start_date, status,
	tenure_months, emi_amount, flat_monthly_amount,
	metal_type, metal_weight, metal_purity, metal_net_weight, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*domain.Loan, error) {
	var l domain.Loan
	err := row.Scan(
		&l.ID,
		&l.BorrowerID,
		&l.Principal,
		&l.Strategy,
		&l.StartDate,
		&l.Status,
		&l.TenureMonths,
		&l.EMIAmount,
		&l.FlatMonthlyAmount,
		&l.MetalType,
		&l.MetalWeight,
		&l.MetalPurity,
		&l.MetalNetWeight,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateWithSchedule inserts the loan and its initial payment schedule in one
// transaction. A loan must never exist in committed storage without its
// initial schedule or with a partially written one.
func (r *LoanRepository) CreateWithSchedule(ctx context.Context, loan *domain.Loan, payments []domain.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create loan: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM borrowers WHERE id = $1)`, loan.BorrowerID).Scan(&exists); err != nil {
		return fmt.Errorf("check borrower: %w", err)
	}
	if !exists {
		return fmt.Errorf("borrower %d: %w", loan.BorrowerID, domain.ErrNotFound)
	}

	query := `INSERT INTO loans (borrower_id, principal, strategy, start_date, status,
		tenure_months, emi_amount, flat_monthly_amount,
		metal_type, metal_weight, metal_purity, metal_net_weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		loan.BorrowerID, loan.Principal, loan.Strategy, loan.StartDate, loan.Status,
		loan.TenureMonths, loan.EMIAmount, loan.FlatMonthlyAmount,
		loan.MetalType, loan.MetalWeight, loan.MetalPurity, loan.MetalNetWeight,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}

	for i := range payments {
		payments[i].LoanID = loan.ID
		if err := insertPayment(ctx, tx, &payments[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get loan %d: %w", id, err)
	}
	return l, nil
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrowerID int64) ([]domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE borrower_id = $1 ORDER BY start_date, id`, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list loans for borrower %d: %w", borrowerID, err)
	}
	defer rows.Close()

	var out []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, id int64, status domain.LoanStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update loan %d status: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the loan and all its payments atomically.
func (r *LoanRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete loan: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE loan_id = $1`, id); err != nil {
		return fmt.Errorf("delete loan payments: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete loan %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}
