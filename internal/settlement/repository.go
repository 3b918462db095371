package settlement

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surtidor-erp/surtidor-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for settlements.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePayment persists a registered payment with its frozen payload and
// applies the document lines in the same transaction.
func (r *Repository) CreatePayment(ctx context.Context, input CreatePaymentInput) (*Payment, error) {
	payloadJSON, err := json.Marshal(input.Payload)
	if err != nil {
		return nil, err
	}
	payment := &Payment{
		Number:         input.Number,
		CustomerID:     input.CustomerID,
		BranchID:       input.BranchID,
		Gross:          input.Totals.Gross,
		DocAdjustment:  input.Totals.DocAdjustment,
		ChequeInterest: input.Totals.ChequeInterest,
		NetToApply:     input.Totals.NetToApply,
		Diff:           input.Totals.Diff,
		Payload:        input.Payload,
		Receipt:        input.Receipt,
		CreatedBy:      input.CreatedBy,
	}
	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO payments (
				number, customer_id, branch_id, gross, doc_adjustment,
				cheque_interest, net_to_apply, diff, payload, receipt,
				created_by, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			RETURNING id, created_at`,
			input.Number, input.CustomerID, input.BranchID,
			input.Totals.Gross, input.Totals.DocAdjustment, input.Totals.ChequeInterest,
			input.Totals.NetToApply, input.Totals.Diff, payloadJSON, input.Receipt,
			input.CreatedBy,
		).Scan(&payment.ID, &payment.CreatedAt)
		if err != nil {
			return err
		}
		// The full applied base drains the balance: a discount forgives the
		// difference to FinalAmount instead of keeping it collectible.
		for _, doc := range input.Payload.Documents {
			if doc.DocumentID == 0 {
				continue
			}
			_, err := tx.Exec(ctx, `
				UPDATE documents
				SET balance = GREATEST(balance - $2, 0),
				    settled_at = CASE WHEN balance - $2 <= 0.005 THEN NOW() ELSE settled_at END
				WHERE id = $1`, doc.DocumentID, doc.BaseAmount)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment fetches one payment by id; nil when absent.
func (r *Repository) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	var payment Payment
	var payloadJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, number, customer_id, branch_id, gross, doc_adjustment,
		       cheque_interest, net_to_apply, diff, payload, receipt,
		       created_by, created_at
		FROM payments WHERE id = $1`, id,
	).Scan(&payment.ID, &payment.Number, &payment.CustomerID, &payment.BranchID,
		&payment.Gross, &payment.DocAdjustment, &payment.ChequeInterest,
		&payment.NetToApply, &payment.Diff, &payloadJSON, &payment.Receipt,
		&payment.CreatedBy, &payment.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(payloadJSON, &payment.Payload); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPayments returns registered payments, newest first.
func (r *Repository) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, number, customer_id, branch_id, gross, doc_adjustment,
		       cheque_interest, net_to_apply, diff, created_by, created_at
		FROM payments
		WHERE ($1 = 0 OR customer_id = $1)
		  AND ($2 = 0 OR branch_id = $2)
		ORDER BY created_at DESC
		LIMIT $3`, req.CustomerID, req.BranchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Number, &p.CustomerID, &p.BranchID,
			&p.Gross, &p.DocAdjustment, &p.ChequeInterest,
			&p.NetToApply, &p.Diff, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

// ListOpenDocuments returns a customer's unsettled documents ordered by age.
func (r *Repository) ListOpenDocuments(ctx context.Context, customerID int64) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, number, issue_date, expiration_date, balance, payment_condition
		FROM documents
		WHERE customer_id = $1 AND balance > 0 AND settled_at IS NULL
		ORDER BY issue_date`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Number, &d.IssueDate, &d.ExpirationDate, &d.Balance, &d.PaymentCondition); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
