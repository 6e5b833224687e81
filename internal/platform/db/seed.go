package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"milpay/internal/domain/auth"
	"milpay/internal/platform/config"
)

// Seed provisions the initial admin account when the configured service
// number is not yet registered. It is a no-op without seed credentials.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedAdminServiceNumber == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE service_number = $1", cfg.SeedAdminServiceNumber).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (full_name, rank, service_number, email, password_hash)
    VALUES ($1, $2, $3, $4, $5)
  `, cfg.SeedAdminFullName, "Admin", cfg.SeedAdminServiceNumber, cfg.SeedAdminEmail, hash)
	return err
}
