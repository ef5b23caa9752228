package db

import (
	"context"
	"time"

	"pxv-pay/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentMethodColumns = `id, merchant_id, name, type, countries, status, url, instructions, details, icon_url,
	display_order, created_at, updated_at`

type PaymentMethodRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentMethodRepository(pool *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{pool: pool}
}

func scanPaymentMethod(row pgx.Row) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := row.Scan(&m.ID, &m.MerchantID, &m.Name, &m.Type, &m.Countries, &m.Status, &m.URL, &m.Instructions,
		&m.Details, &m.IconURL, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectPaymentMethods(rows pgx.Rows, op string) ([]*model.PaymentMethod, error) {
	defer rows.Close()

	methods := make([]*model.PaymentMethod, 0)
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, translate(err, op)
		}
		methods = append(methods, m)
	}
	return methods, translate(rows.Err(), op)
}

// Create inserts m. The payment-link URL invariant is also enforced by a
// CHECK constraint, surfacing as ErrConstraint.
func (r *PaymentMethodRepository) Create(ctx context.Context, m *model.PaymentMethod) (*model.PaymentMethod, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Countries == nil {
		m.Countries = []string{}
	}
	if m.Details == nil {
		m.Details = map[string]string{}
	}

	query := `INSERT INTO payment_method (id, merchant_id, name, type, countries, status, url, instructions, details,
	          icon_url, display_order)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING ` + paymentMethodColumns
	created, err := scanPaymentMethod(r.pool.QueryRow(ctx, query, m.ID, m.MerchantID, m.Name, m.Type, m.Countries,
		m.Status, m.URL, m.Instructions, m.Details, m.IconURL, m.DisplayOrder))
	if err != nil {
		return nil, translate(err, "insert payment method")
	}
	return created, nil
}

func (r *PaymentMethodRepository) SelectByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_method WHERE id = $1`
	m, err := scanPaymentMethod(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "select payment method by id")
	}
	return m, nil
}

// ListByMerchant returns methods in display order. A nil merchantID lists every method.
func (r *PaymentMethodRepository) ListByMerchant(ctx context.Context, merchantID *uuid.UUID) ([]*model.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_method
	          WHERE ($1::uuid IS NULL OR merchant_id = $1)
	          ORDER BY display_order, name`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, translate(err, "list payment methods")
	}
	return collectPaymentMethods(rows, "list payment methods")
}

// ListActiveForCountry returns the merchant's active methods offered in
// country, ordered by display order then name.
func (r *PaymentMethodRepository) ListActiveForCountry(ctx context.Context, merchantID uuid.UUID, country string) ([]*model.PaymentMethod, error) {
	query := `SELECT ` + paymentMethodColumns + ` FROM payment_method
	          WHERE merchant_id = $1 AND status = 'active' AND $2 = ANY(countries)
	          ORDER BY display_order, name`
	rows, err := r.pool.Query(ctx, query, merchantID, country)
	if err != nil {
		return nil, translate(err, "list active payment methods")
	}
	return collectPaymentMethods(rows, "list active payment methods")
}

func (r *PaymentMethodRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MethodStatus) (*model.PaymentMethod, error) {
	query := `UPDATE payment_method SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + paymentMethodColumns
	m, err := scanPaymentMethod(r.pool.QueryRow(ctx, query, id, status, time.Now()))
	if err != nil {
		return nil, translate(err, "update payment method status")
	}
	return m, nil
}
