package repository

import "database/sql"

// Migrate creates the ledger tables if they do not exist yet. Foreign keys
// cascade so a borrower delete can never leave orphaned loans or payments
// even outside the explicit cascade transactions.
func Migrate(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS borrowers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		document_type TEXT NOT NULL DEFAULT '',
		document_number TEXT NOT NULL DEFAULT '',
		guarantor_name TEXT NOT NULL DEFAULT '',
		guarantor_phone TEXT NOT NULL DEFAULT '',
		guarantor_address TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		photo_ref TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS loans (
		id BIGSERIAL PRIMARY KEY,
		borrower_id BIGINT NOT NULL REFERENCES borrowers(id) ON DELETE CASCADE,
		principal NUMERIC(14,2) NOT NULL,
		strategy TEXT NOT NULL,
		start_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		tenure_months INT NOT NULL DEFAULT 0,
		emi_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		flat_monthly_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		metal_type TEXT NOT NULL DEFAULT '',
		metal_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
		metal_purity DOUBLE PRECISION NOT NULL DEFAULT 0,
		metal_net_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		loan_id BIGINT NOT NULL REFERENCES loans(id) ON DELETE CASCADE,
		due_date DATE NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'upcoming',
		paid_date DATE,
		paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		due_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		payment_method TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS payments_loan_due_date_key ON payments (loan_id, due_date);
	CREATE INDEX IF NOT EXISTS loans_borrower_id_idx ON loans (borrower_id);
	`

	_, err := db.Exec(schema)
	return err
}
