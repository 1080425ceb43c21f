package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lendledger/internal/domain"
)

type BorrowerRepository struct {
	db *sql.DB
}

func NewBorrowerRepository(db *sql.DB) *BorrowerRepository {
	return &BorrowerRepository{db: db}
}

const borrowerColumns = `id, name, phone, address, document_type, document_number,
	guarantor_name, guarantor_phone, guarantor_address, notes, photo_ref, created_at, updated_at`

func scanBorrower(row interface{ Scan(...any) error }) (*domain.Borrower, error) {
	var b domain.Borrower
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Phone,
		&b.Address,
		&b.DocumentType,
		&b.DocumentNumber,
		&b.GuarantorName,
		&b.GuarantorPhone,
		&b.GuarantorAddress,
		&b.Notes,
		&b.PhotoRef,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BorrowerRepository) Create(ctx context.Context, b *domain.Borrower) error {
	query := `INSERT INTO borrowers (name, phone, address, document_type, document_number,
		guarantor_name, guarantor_phone, guarantor_address, notes, photo_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		b.Name, b.Phone, b.Address, b.DocumentType, b.DocumentNumber,
		b.GuarantorName, b.GuarantorPhone, b.GuarantorAddress, b.Notes, b.PhotoRef,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert borrower: %w", err)
	}
	return nil
}

func (r *BorrowerRepository) GetByID(ctx context.Context, id int64) (*domain.Borrower, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+borrowerColumns+` FROM borrowers WHERE id = $1`, id)
	b, err := scanBorrower(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get borrower %d: %w", id, err)
	}
	return b, nil
}

func (r *BorrowerRepository) List(ctx context.Context) ([]domain.Borrower, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+borrowerColumns+` FROM borrowers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list borrowers: %w", err)
	}
	defer rows.Close()

	var out []domain.Borrower
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Update writes the mutable profile fields. The document type/number are
// written as provided; the once-set immutability rule is enforced by the
// service before calling this.
func (r *BorrowerRepository) Update(ctx context.Context, b *domain.Borrower) error {
	query := `UPDATE borrowers SET name = $1, phone = $2, address = $3,
		document_type = $4, document_number = $5,
		guarantor_name = $6, guarantor_phone = $7, guarantor_address = $8,
		notes = $9, photo_ref = $10, updated_at = now()
		WHERE id = $11
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		b.Name, b.Phone, b.Address, b.DocumentType, b.DocumentNumber,
		b.GuarantorName, b.GuarantorPhone, b.GuarantorAddress, b.Notes, b.PhotoRef,
		b.ID,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update borrower %d: %w", b.ID, err)
	}
	return nil
}

// Delete removes the borrower and cascades to every loan and payment in a
// single transaction; a partial cascade never commits.
func (r *BorrowerRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete borrower: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM payments WHERE loan_id IN (SELECT id FROM loans WHERE borrower_id = $1)`, id); err != nil {
		return fmt.Errorf("delete borrower payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM loans WHERE borrower_id = $1`, id); err != nil {
		return fmt.Errorf("delete borrower loans: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM borrowers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete borrower %d: %w", id, err)
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
