package db

import (
	"context"
	"database/sql"
	"fmt"

	"pxv-pay/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

func GetConnStr(cfg config.Database) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", cfg.User, cfg.Password, cfg.Host, cfg.Port,
		cfg.Name, cfg.SSLMode)
}

func RunMigrations(connStr, migrationsDir string) error {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return errors.Wrap(err, "open migration connection")
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func GetPool(connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, err
	}
	return dbpool, nil
}
