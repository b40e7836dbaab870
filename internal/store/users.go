package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// StoredUser is a user row including the password hash. The hash never
// leaves the store except to the auth package.
type StoredUser struct {
	speedway.User
	PasswordHash string
}

// CreateUser inserts a new account. Returns ErrDuplicate when the username
// is taken.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*StoredUser, error) {
	u := &StoredUser{
		User: speedway.User{
			ID:        uuid.NewString(),
			Username:  username,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: passwordHash,
	}
	_, err := s.pool.Exec(ctx, "insert_user", u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// UserByUsername looks an account up for login.
func (s *Store) UserByUsername(ctx context.Context, username string) (*StoredUser, error) {
	return s.scanUser(s.pool.QueryRow(ctx, "user_by_username", username))
}

// UserByID looks an account up by id, for token validation.
func (s *Store) UserByID(ctx context.Context, id string) (*StoredUser, error) {
	return s.scanUser(s.pool.QueryRow(ctx, "user_by_id", id))
}

func (s *Store) scanUser(row pgx.Row) (*StoredUser, error) {
	var u StoredUser
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
