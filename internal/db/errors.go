package db

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrConstraint = errors.New("constraint violation")
)

const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgNumericOutOfRange   = "22003"
)

// translate maps driver errors onto the package sentinels, keeping the
// original error in the chain for logging.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Wrap(ErrNotFound, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Wrapf(ErrConflict, "%s: %s", op, pgErr.ConstraintName)
		case pgCheckViolation, pgForeignKeyViolation, pgNotNullViolation, pgNumericOutOfRange:
			return errors.Wrapf(ErrConstraint, "%s: %s", op, pgErr.ConstraintName)
		}
	}

	return errors.Wrap(err, op)
}
