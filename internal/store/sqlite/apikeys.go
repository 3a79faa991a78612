package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

const apiKeyColumns = `id, user_id, key_hash, key_prefix, scopes, rate_limit_tier, name, revoked_at, last_used_at, created_at`

func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, user_id, key_hash, key_prefix, scopes, rate_limit_tier, name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.UserID, key.KeyHash, key.KeyPrefix, strings.Join(key.Scopes, ","),
		key.RateLimitTier, key.Name, formatInstant(key.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create API key: %w", err)
	}
	return nil
}

func (s *Store) GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error) {
	key, err := scanAPIKey(s.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get API key: %w", err)
	}
	return key, nil
}

func (s *Store) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error) {
	return s.queryAPIKeys(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE key_prefix = ? AND revoked_at IS NULL`, prefix)
}

func (s *Store) ListAPIKeysByUserID(ctx context.Context, userID string) ([]*model.APIKey, error) {
	return s.queryAPIKeys(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (s *Store) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		formatInstant(time.Now()), id)
	if err != nil {
		return fmt.Errorf("revoke API key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke API key: %w", err)
	}
	if n == 0 {
		return store.ErrAPIKeyNotFound
	}
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = ? WHERE id = ?`, formatInstant(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update API key last used: %w", err)
	}
	return nil
}

func (s *Store) queryAPIKeys(ctx context.Context, query string, arg any) ([]*model.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query API keys: %w", err)
	}
	defer rows.Close()

	var keys []*model.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan API key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func scanAPIKey(row scanner) (*model.APIKey, error) {
	var key model.APIKey
	var scopes, createdAt string
	var revokedAt, lastUsedAt sql.NullString

	if err := row.Scan(&key.ID, &key.UserID, &key.KeyHash, &key.KeyPrefix, &scopes,
		&key.RateLimitTier, &key.Name, &revokedAt, &lastUsedAt, &createdAt); err != nil {
		return nil, err
	}

	if scopes != "" {
		key.Scopes = strings.Split(scopes, ",")
	}
	var err error
	if key.CreatedAt, err = parseInstant(createdAt); err != nil {
		return nil, err
	}
	if key.RevokedAt, err = parseNullInstant(revokedAt); err != nil {
		return nil, err
	}
	if key.LastUsedAt, err = parseNullInstant(lastUsedAt); err != nil {
		return nil, err
	}
	return &key, nil
}
