package db

import (
	"context"
	"time"

	"pxv-pay/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const checkoutLinkColumns = `id, merchant_id, slug, title, description, amount_type, amount, min_amount, max_amount,
	currency, active_country_codes, status, expires_at, created_at, updated_at`

type CheckoutLinkRepository struct {
	pool *pgxpool.Pool
}

func NewCheckoutLinkRepository(pool *pgxpool.Pool) *CheckoutLinkRepository {
	return &CheckoutLinkRepository{pool: pool}
}

func scanCheckoutLink(row pgx.Row) (*model.CheckoutLink, error) {
	var l model.CheckoutLink
	err := row.Scan(&l.ID, &l.MerchantID, &l.Slug, &l.Title, &l.Description, &l.AmountType, &l.Amount,
		&l.MinAmount, &l.MaxAmount, &l.Currency, &l.ActiveCountryCodes, &l.Status, &l.ExpiresAt,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CheckoutLinkRepository) Create(ctx context.Context, l *model.CheckoutLink) (*model.CheckoutLink, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.ActiveCountryCodes == nil {
		l.ActiveCountryCodes = []string{}
	}

	query := `INSERT INTO checkout_link (id, merchant_id, slug, title, description, amount_type, amount, min_amount,
	          max_amount, currency, active_country_codes, status, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING ` + checkoutLinkColumns
	created, err := scanCheckoutLink(r.pool.QueryRow(ctx, query, l.ID, l.MerchantID, l.Slug, l.Title, l.Description,
		l.AmountType, l.Amount, l.MinAmount, l.MaxAmount, l.Currency, l.ActiveCountryCodes, l.Status, l.ExpiresAt))
	if err != nil {
		return nil, translate(err, "insert checkout link")
	}
	return created, nil
}

func (r *CheckoutLinkRepository) SelectBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error) {
	query := `SELECT ` + checkoutLinkColumns + ` FROM checkout_link WHERE slug = $1`
	l, err := scanCheckoutLink(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, translate(err, "select checkout link by slug")
	}
	return l, nil
}

func (r *CheckoutLinkRepository) SelectByID(ctx context.Context, id uuid.UUID) (*model.CheckoutLink, error) {
	query := `SELECT ` + checkoutLinkColumns + ` FROM checkout_link WHERE id = $1`
	l, err := scanCheckoutLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "select checkout link by id")
	}
	return l, nil
}

// ListByMerchant returns links newest first. A nil merchantID lists every link.
func (r *CheckoutLinkRepository) ListByMerchant(ctx context.Context, merchantID *uuid.UUID) ([]*model.CheckoutLink, error) {
	query := `SELECT ` + checkoutLinkColumns + ` FROM checkout_link
	          WHERE ($1::uuid IS NULL OR merchant_id = $1)
	          ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, translate(err, "list checkout links")
	}
	defer rows.Close()

	links := make([]*model.CheckoutLink, 0)
	for rows.Next() {
		l, err := scanCheckoutLink(rows)
		if err != nil {
			return nil, translate(err, "scan checkout link")
		}
		links = append(links, l)
	}
	return links, translate(rows.Err(), "list checkout links")
}

func (r *CheckoutLinkRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LinkStatus) (*model.CheckoutLink, error) {
	query := `UPDATE checkout_link SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + checkoutLinkColumns
	l, err := scanCheckoutLink(r.pool.QueryRow(ctx, query, id, status, time.Now()))
	if err != nil {
		return nil, translate(err, "update checkout link status")
	}
	return l, nil
}
