package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists branch settings in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads the settings row for a branch. A missing row returns nil.
func (r *Repository) Get(ctx context.Context, branchID int64) (*Record, error) {
	const query = `
SELECT branch_id, annual_interest_pct, cheque_grace_days, documents_grace_days, updated_by, updated_at
FROM collection_settings
WHERE branch_id = $1`

	var rec Record
	err := r.pool.QueryRow(ctx, query, branchID).Scan(
		&rec.BranchID,
		&rec.AnnualInterestPct,
		&rec.ChequeGraceDays,
		&rec.DocumentsGraceDays,
		&rec.UpdatedBy,
		&rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Upsert writes the settings row for a branch and returns the stored state.
func (r *Repository) Upsert(ctx context.Context, req UpdateRequest) (*Record, error) {
	const query = `
INSERT INTO collection_settings (branch_id, annual_interest_pct, cheque_grace_days, documents_grace_days, updated_by, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (branch_id) DO UPDATE SET
    annual_interest_pct = EXCLUDED.annual_interest_pct,
    cheque_grace_days = EXCLUDED.cheque_grace_days,
    documents_grace_days = EXCLUDED.documents_grace_days,
    updated_by = EXCLUDED.updated_by,
    updated_at = now()
RETURNING branch_id, annual_interest_pct, cheque_grace_days, documents_grace_days, updated_by, updated_at`

	var rec Record
	err := r.pool.QueryRow(ctx, query,
		req.BranchID,
		req.AnnualInterestPct,
		req.ChequeGraceDays,
		req.DocumentsGraceDays,
		req.UpdatedBy,
	).Scan(
		&rec.BranchID,
		&rec.AnnualInterestPct,
		&rec.ChequeGraceDays,
		&rec.DocumentsGraceDays,
		&rec.UpdatedBy,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
