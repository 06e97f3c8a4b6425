package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/connectpp/student-network/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, firstname, lastname, regno, password"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Regno, &u.PasswordHash)
	return u, err
}

// Insert stores u and assigns it a fresh uuid when ID is empty. A second
// registration of the same regno fails with ErrDuplicate.
func (r *UserRepo) Insert(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, firstname, lastname, regno, password) VALUES (?,?,?,?,?)",
		u.ID, u.Firstname, u.Lastname, u.Regno, u.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByRegno fetches a user by registration number.
func (r *UserRepo) FindByRegno(ctx context.Context, regno string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE regno=? LIMIT 1", regno))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user by regno: %w", err)
	}
	return u, nil
}

// FindByName fetches the first user with the given names. An empty
// lastname matches on firstname alone.
func (r *UserRepo) FindByName(ctx context.Context, firstname, lastname string) (model.User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE firstname=?"
	args := []any{strings.TrimSpace(firstname)}
	if lastname != "" {
		q += " AND lastname=?"
		args = append(args, strings.TrimSpace(lastname))
	}
	q += " ORDER BY created_at, id LIMIT 1"

	u, err := scanUser(r.DB.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("find user by name: %w", err)
	}
	return u, nil
}

// List returns every user without credentials, oldest first.
func (r *UserRepo) List(ctx context.Context) ([]model.UserSummary, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, firstname, lastname, regno FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []model.UserSummary{}
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Firstname, &s.Lastname, &s.Regno); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePassword replaces the stored hash of regno.
func (r *UserRepo) UpdatePassword(ctx context.Context, regno, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password=?, updated_at=CURRENT_TIMESTAMP WHERE regno=?", hash, regno)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
