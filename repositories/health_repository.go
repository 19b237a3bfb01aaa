package repositories

import (
	"context"
	"database/sql"
)

type HealthRepository interface {
	Ping(ctx context.Context) error
}

type postgresHealthRepository struct {
	db *sql.DB
}

func NewPostgresHealthRepository(db *sql.DB) HealthRepository {
	return &postgresHealthRepository{db: db}
}

// Ping runs a trivial query instead of db.PingContext so that a broken
// connection pool is noticed too.
func (r *postgresHealthRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}
