package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KeyValueRepo stores operator secrets in `key_value_pairs`. Values are
// opaque here; encryption happens in the caller.
type KeyValueRepo struct {
	db *sql.DB
}

func NewKeyValueRepo(db *sql.DB) *KeyValueRepo {
	return &KeyValueRepo{db: db}
}

// Get returns the value stored under name or ErrNotFound.
func (r *KeyValueRepo) Get(ctx context.Context, name string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM key_value_pairs WHERE name = ?", name).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", name, err)
	}
	return v, nil
}

// Put creates or replaces the value stored under name.
func (r *KeyValueRepo) Put(ctx context.Context, name, value string) error {
	const q = `INSERT INTO key_value_pairs (name, value) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE value = VALUES(value)`
	if _, err := r.db.ExecContext(ctx, q, name, value); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}
