// Package postgres implements the catalog store contract on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/systiva/accessctl/internal/config"
	"github.com/systiva/accessctl/internal/metrics"
)

const driverName = "postgres"

// DB wraps sql.DB with additional functionality.
type DB struct {
	*sql.DB
}

// New creates a new database connection.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck performs a health check on the database.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// exec runs a write statement, recording its latency and failure under
// the given operation label.
func (db *DB) exec(ctx context.Context, operation, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := db.ExecContext(ctx, query, args...)
	metrics.ObserveStoreOperation(driverName, operation, start, err)
	return res, err
}

func (db *DB) query(ctx context.Context, operation, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	metrics.ObserveStoreOperation(driverName, operation, start, err)
	return rows, err
}

// queryRow records query-level failures only; scan errors surface to the
// caller through sql.Row.
func (db *DB) queryRow(ctx context.Context, operation, query string, args ...any) *sql.Row {
	start := time.Now()
	row := db.QueryRowContext(ctx, query, args...)
	metrics.ObserveStoreOperation(driverName, operation, start, row.Err())
	return row
}
