package db

import (
	"context"

	"pxv-pay/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceRepository stores per-owner countries and currencies. Uniqueness of
// (owner, code) and (owner, name) is left to the unique constraints.
type ReferenceRepository struct {
	pool *pgxpool.Pool
}

func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

func (r *ReferenceRepository) CreateCountry(ctx context.Context, c *model.Country) (*model.Country, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `INSERT INTO country (id, owner_id, code, name) VALUES ($1, $2, $3, $4)
	          RETURNING id, owner_id, code, name, created_at`
	var out model.Country
	err := r.pool.QueryRow(ctx, query, c.ID, c.OwnerID, c.Code, c.Name).
		Scan(&out.ID, &out.OwnerID, &out.Code, &out.Name, &out.CreatedAt)
	if err != nil {
		return nil, translate(err, "insert country")
	}
	return &out, nil
}

func (r *ReferenceRepository) SelectCountryByID(ctx context.Context, id uuid.UUID) (*model.Country, error) {
	query := `SELECT id, owner_id, code, name, created_at FROM country WHERE id = $1`
	var c model.Country
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.OwnerID, &c.Code, &c.Name, &c.CreatedAt); err != nil {
		return nil, translate(err, "select country by id")
	}
	return &c, nil
}

func (r *ReferenceRepository) ListCountries(ctx context.Context, ownerID *uuid.UUID) ([]*model.Country, error) {
	query := `SELECT id, owner_id, code, name, created_at FROM country
	          WHERE ($1::uuid IS NULL OR owner_id = $1)
	          ORDER BY name`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, translate(err, "list countries")
	}
	defer rows.Close()

	countries := make([]*model.Country, 0)
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Code, &c.Name, &c.CreatedAt); err != nil {
			return nil, translate(err, "scan country")
		}
		countries = append(countries, &c)
	}
	return countries, translate(rows.Err(), "list countries")
}

func (r *ReferenceRepository) DeleteCountry(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM country WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete country")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReferenceRepository) CreateCurrency(ctx context.Context, c *model.Currency) (*model.Currency, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	query := `INSERT INTO currency (id, owner_id, code, name, symbol) VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, owner_id, code, name, symbol, created_at`
	var out model.Currency
	err := r.pool.QueryRow(ctx, query, c.ID, c.OwnerID, c.Code, c.Name, c.Symbol).
		Scan(&out.ID, &out.OwnerID, &out.Code, &out.Name, &out.Symbol, &out.CreatedAt)
	if err != nil {
		return nil, translate(err, "insert currency")
	}
	return &out, nil
}

func (r *ReferenceRepository) SelectCurrencyByID(ctx context.Context, id uuid.UUID) (*model.Currency, error) {
	query := `SELECT id, owner_id, code, name, symbol, created_at FROM currency WHERE id = $1`
	var c model.Currency
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.OwnerID, &c.Code, &c.Name, &c.Symbol, &c.CreatedAt); err != nil {
		return nil, translate(err, "select currency by id")
	}
	return &c, nil
}

func (r *ReferenceRepository) ListCurrencies(ctx context.Context, ownerID *uuid.UUID) ([]*model.Currency, error) {
	query := `SELECT id, owner_id, code, name, symbol, created_at FROM currency
	          WHERE ($1::uuid IS NULL OR owner_id = $1)
	          ORDER BY code`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, translate(err, "list currencies")
	}
	defer rows.Close()

	currencies := make([]*model.Currency, 0)
	for rows.Next() {
		var c model.Currency
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Code, &c.Name, &c.Symbol, &c.CreatedAt); err != nil {
			return nil, translate(err, "scan currency")
		}
		currencies = append(currencies, &c)
	}
	return currencies, translate(rows.Err(), "list currencies")
}

func (r *ReferenceRepository) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM currency WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete currency")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
