package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore keeps every document in a single key/value table.
type SQLiteStore struct {
	database *sql.DB
}

func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{database: database}
}

func (store *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := store.database.QueryRowContext(ctx,
		"SELECT value FROM store WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting key %s: %w", key, err)
	}
	return value, nil
}

func (store *SQLiteStore) Set(ctx context.Context, key string, value string) error {
	_, err := store.database.ExecContext(ctx,
		`INSERT INTO store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP`,
		key, value, value,
	)
	if err != nil {
		return fmt.Errorf("setting key %s: %w", key, err)
	}
	return nil
}

func (store *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := store.database.ExecContext(ctx, "DELETE FROM store"); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}
