package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultTokenTable = "vk_tokens"

// PostgresStore persists tokens in a single table keyed by account, so one
// database can back many credential sets.
type PostgresStore struct {
	db      *sql.DB
	table   string
	account string
}

// NewPostgresStore connects to Postgres and ensures the token table exists.
// The account value distinguishes rows when several flows share one database.
func NewPostgresStore(ctx context.Context, dsn, account string) (*PostgresStore, error) {
	trimmedDSN := strings.TrimSpace(dsn)
	if trimmedDSN == "" {
		return nil, fmt.Errorf("token store: postgres DSN is required")
	}
	if strings.TrimSpace(account) == "" {
		return nil, fmt.Errorf("token store: account is required")
	}

	db, err := sql.Open("pgx", trimmedDSN)
	if err != nil {
		return nil, fmt.Errorf("token store: open database failed: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token store: ping database failed: %w", err)
	}

	s := &PostgresStore{db: db, table: defaultTokenTable, account: account}
	if err = s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			account TEXT PRIMARY KEY,
			access_token TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.table))
	if err != nil {
		return fmt.Errorf("token store: create table failed: %w", err)
	}
	return nil
}

// Get returns the token stored for the account, or ErrNoToken when absent.
func (s *PostgresStore) Get(ctx context.Context) (string, error) {
	var token string
	query := fmt.Sprintf("SELECT access_token FROM %s WHERE account = $1", s.table)
	err := s.db.QueryRowContext(ctx, query, s.account).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("token store: select failed: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Set upserts the token row for the account.
func (s *PostgresStore) Set(ctx context.Context, token string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (account, access_token, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account)
		DO UPDATE SET access_token = EXCLUDED.access_token, updated_at = NOW()
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query, s.account, token); err != nil {
		return fmt.Errorf("token store: upsert failed: %w", err)
	}
	return nil
}
