package db

import (
	"context"
	"time"

	"pxv-pay/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, checkout_link_id, merchant_id, customer_name, customer_email, amount, currency, country,
	payment_method_id, payment_method, payment_proof_url, status, verification_note, verified_by, verified_at,
	created_at, updated_at`

const defaultListLimit = 50

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.CheckoutLinkID, &p.MerchantID, &p.CustomerName, &p.CustomerEmail, &p.Amount,
		&p.Currency, &p.Country, &p.PaymentMethodID, &p.PaymentMethod, &p.PaymentProofURL, &p.Status,
		&p.VerificationNote, &p.VerifiedBy, &p.VerifiedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `INSERT INTO payment (id, checkout_link_id, merchant_id, customer_name, customer_email, amount, currency,
	          country, payment_method_id, payment_method, payment_proof_url, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING ` + paymentColumns
	created, err := scanPayment(r.pool.QueryRow(ctx, query, p.ID, p.CheckoutLinkID, p.MerchantID, p.CustomerName,
		p.CustomerEmail, p.Amount, p.Currency, p.Country, p.PaymentMethodID, p.PaymentMethod, p.PaymentProofURL,
		p.Status))
	if err != nil {
		return nil, translate(err, "insert payment")
	}
	return created, nil
}

func (r *PaymentRepository) SelectByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment WHERE id = $1`
	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "select payment by id")
	}
	return p, nil
}

// List returns payments newest first.
func (r *PaymentRepository) List(ctx context.Context, filter model.PaymentFilter) ([]*model.Payment, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var status *string
	if filter.Status != "" {
		s := string(filter.Status)
		status = &s
	}

	query := `SELECT ` + paymentColumns + ` FROM payment
	          WHERE ($1::uuid IS NULL OR merchant_id = $1)
	            AND ($2::text IS NULL OR status = $2)
	          ORDER BY created_at DESC
	          LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filter.MerchantID, status, limit, filter.Offset)
	if err != nil {
		return nil, translate(err, "list payments")
	}
	defer rows.Close()

	payments := make([]*model.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, translate(err, "scan payment")
		}
		payments = append(payments, p)
	}
	return payments, translate(rows.Err(), "list payments")
}

// UpdateStatus records a verification verdict in a single statement. Only the
// verification columns and updated_at change.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, note *string,
	verifiedBy uuid.UUID, verifiedAt time.Time) (*model.Payment, error) {
	query := `UPDATE payment
	          SET status = $2, verification_note = $3, verified_by = $4, verified_at = $5, updated_at = $5
	          WHERE id = $1
	          RETURNING ` + paymentColumns
	p, err := scanPayment(r.pool.QueryRow(ctx, query, id, status, note, verifiedBy, verifiedAt))
	if err != nil {
		return nil, translate(err, "update payment status")
	}
	return p, nil
}

// CountRecent counts submissions for the same link, email and amount created
// at or after since.
func (r *PaymentRepository) CountRecent(ctx context.Context, linkID uuid.UUID, email string, amount decimal.Decimal,
	since time.Time) (int, error) {
	query := `SELECT count(*) FROM payment
	          WHERE checkout_link_id = $1 AND lower(customer_email) = lower($2) AND amount = $3 AND created_at >= $4`
	var n int
	if err := r.pool.QueryRow(ctx, query, linkID, email, amount, since).Scan(&n); err != nil {
		return 0, translate(err, "count recent payments")
	}
	return n, nil
}
