package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tally/internal/core"
)

// InsertUser persists a new user account.
func (s *Store) InsertUser(ctx context.Context, u core.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, u.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByEmail looks a user up by email, case-insensitively.
// Returns core.ErrNotFound when no account exists.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE LOWER(email) = LOWER(?)`, email)
	return scanUser(row)
}

// FindUserByID fetches a user by id. Returns core.ErrNotFound when the
// id does not exist.
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

func scanUser(row *sql.Row) (*core.User, error) {
	var (
		id string
		u  core.User
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	u.ID = parsed
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
