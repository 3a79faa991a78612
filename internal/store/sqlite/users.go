package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		user.ID, user.Email, formatInstant(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	var createdAt string
	err := s.db.QueryRowContext(ctx, `SELECT id, email, created_at FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if user.CreatedAt, err = parseInstant(createdAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	existing, err := s.GetUserByEmail(ctx, user.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	user.CreatedAt = time.Now().UTC()
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
