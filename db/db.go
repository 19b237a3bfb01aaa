package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = time.Minute
)

// Connect opens a Postgres pool for dsn and waits up to timeout for the
// first successful ping. A malformed dsn fails before any network call.
func Connect(ctx context.Context, dsn string, timeout time.Duration) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	pool := sql.OpenDB(connector)
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetConnMaxLifetime(connMaxLifetime)
	pool.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		pingErr := fmt.Errorf("database did not answer within %v: %w", timeout, err)
		if closeErr := pool.Close(); closeErr != nil {
			return nil, errors.Join(pingErr, fmt.Errorf("failed to close database pool: %w", closeErr))
		}
		return nil, pingErr
	}
	return pool, nil
}
