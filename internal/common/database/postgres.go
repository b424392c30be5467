package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mobile-forms/internal/common/config"

	"github.com/lib/pq"
)

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureProfilesTable creates the submission table if it does not exist yet.
// table is a single identifier and is always quoted.
func (c *PostgresClient) EnsureProfilesTable(ctx context.Context, table string) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id              UUID PRIMARY KEY,
		full_name       TEXT NOT NULL,
		email           TEXT NOT NULL,
		phone           TEXT,
		passport_number CHAR(10) NOT NULL,
		password_hash   TEXT NOT NULL,
		avatar_uri      TEXT,
		accepted_terms  BOOLEAN NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, pq.QuoteIdentifier(table))
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
