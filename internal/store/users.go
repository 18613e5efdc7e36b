package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/itam/internal/apperr"
	"github.com/starford/itam/internal/models"
)

const userColumns = `id, username, fullname, email, department, is_active, role`

func scanUser(s scanner, extra ...any) (*models.User, error) {
	var (
		u                     models.User
		fullname, email, dept sql.NullString
	)
	dest := append([]any{&u.ID, &u.Username, &fullname, &email, &dept, &u.IsActive, &u.Role}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	u.Fullname = strPtr(fullname)
	u.Email = strPtr(email)
	u.Department = strPtr(dept)
	return &u, nil
}

// ListUsers returns every user in insertion order.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// GetUser returns one user or apperr.ErrNotFound.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, mapErr(err, nil)
	}
	return u, nil
}

// GetCredentials returns the user and password hash for a username.
func (db *DB) GetCredentials(ctx context.Context, username string) (*models.User, string, error) {
	var hash sql.NullString
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+`, hashed_password FROM users WHERE username = ?`, username)
	u, err := scanUser(row, &hash)
	if err != nil {
		return nil, "", mapErr(err, nil)
	}
	return u, hash.String, nil
}

// CreateUser inserts a user with an already hashed password.
func (db *DB) CreateUser(ctx context.Context, in models.UserCreate, hash string) (*models.User, error) {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	role := "user"
	if in.Role != nil && *in.Role != "" {
		role = *in.Role
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (username, fullname, email, department, hashed_password, is_active, role)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Username, nullString(in.Fullname), nullString(in.Email), nullString(in.Department), hash, active, role)
	if err != nil {
		return nil, mapErr(err, map[string]string{"username": in.Username, "email": deref(in.Email)})
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: user id: %w", err)
	}
	return db.GetUser(ctx, id)
}

// UpdateUser applies the non-nil fields of in. A non-nil hash replaces the
// stored password.
func (db *DB) UpdateUser(ctx context.Context, id int64, in models.UserUpdate, hash *string) (*models.User, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if in.Username != nil {
		add("username", *in.Username)
	}
	if in.Fullname != nil {
		add("fullname", nullString(emptyToNil(in.Fullname)))
	}
	if in.Email != nil {
		add("email", nullString(emptyToNil(in.Email)))
	}
	if in.Department != nil {
		add("department", nullString(emptyToNil(in.Department)))
	}
	if in.IsActive != nil {
		add("is_active", *in.IsActive)
	}
	if in.Role != nil {
		add("role", *in.Role)
	}
	if hash != nil {
		add("hashed_password", *hash)
	}

	if len(sets) == 0 {
		return db.GetUser(ctx, id)
	}
	args = append(args, id)
	res, err := db.conn.ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, mapErr(err, map[string]string{"username": deref(in.Username), "email": deref(in.Email)})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetUser(ctx, id)
}

// DeleteUser removes a user; their tickets and sessions cascade.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CountUsers returns the number of user rows.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count users: %w", err)
	}
	return n, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
