package db

import (
	"context"
	"fmt"

	"github.com/user-account/backend/internal/model"
)

func (db *Postgres) FindRefreshTokenByAccount(ctx context.Context, accountID int64) (*model.RefreshTokenRecord, error) {
	query := `
		SELECT token_id, token, type, user_id
		FROM refresh_tokens
		WHERE user_id = $1
	`
	var record model.RefreshTokenRecord
	err := db.Pool.QueryRow(ctx, query, accountID).Scan(
		&record.ID,
		&record.Token,
		&record.TokenType,
		&record.AccountID,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &record, nil
}

// CreateRefreshToken returns ErrConflict when the account already owns a
// record or the token string is taken.
func (db *Postgres) CreateRefreshToken(ctx context.Context, accountID int64, token string) (*model.RefreshTokenRecord, error) {
	query := `
		INSERT INTO refresh_tokens (token, type, user_id)
		VALUES ($1, $2, $3)
		RETURNING token_id, token, type, user_id
	`
	var record model.RefreshTokenRecord
	err := db.Pool.QueryRow(ctx, query, token, model.TokenTypeBearer, accountID).Scan(
		&record.ID,
		&record.Token,
		&record.TokenType,
		&record.AccountID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}
	return &record, nil
}
