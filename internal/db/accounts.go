package db

import (
	"context"
	"fmt"

	"github.com/user-account/backend/internal/model"
)

const accountColumns = `user_id, name, email, location, about, password`

func (db *Postgres) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	query := `
		INSERT INTO users (name, email, location, about, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	created, err := scanAccount(db.Pool.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.Location,
		account.About,
		account.PasswordHash,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

func (db *Postgres) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users
		WHERE email = $1
	`
	account, err := scanAccount(db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

func (db *Postgres) GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users
		WHERE user_id = $1
	`
	account, err := scanAccount(db.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Location,
		&account.About,
		&account.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
