package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user-account/backend/internal/model"
)

var accountRowColumns = []string{"user_id", "name", "email", "location", "about", "password"}

func newMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func TestCreateAccount_Success(t *testing.T) {
	repo, mock := newMockPostgres(t)
	about := "hi"

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users\s*\(name, email, location, about, password\).*RETURNING`).
		WithArgs("Ann", "ann@x.com", "NYC", pgxmock.AnyArg(), "digest").
		WillReturnRows(pgxmock.NewRows(accountRowColumns).
			AddRow(int64(1), "Ann", "ann@x.com", "NYC", &about, "digest"))

	got, err := repo.CreateAccount(context.Background(), model.Account{
		Name:         "Ann",
		Email:        "ann@x.com",
		Location:     "NYC",
		About:        &about,
		PasswordHash: "digest",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "ann@x.com", got.Email)
	require.NotNil(t, got.About)
	assert.Equal(t, "hi", *got.About)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_UniqueViolation(t *testing.T) {
	repo, mock := newMockPostgres(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("Ann", "ann@x.com", "NYC", pgxmock.AnyArg(), "digest").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.CreateAccount(context.Background(), model.Account{
		Name: "Ann", Email: "ann@x.com", Location: "NYC", PasswordHash: "digest",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAccount_DBError(t *testing.T) {
	repo, mock := newMockPostgres(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("Ann", "ann@x.com", "NYC", pgxmock.AnyArg(), "digest").
		WillReturnError(errors.New("db down"))

	_, err := repo.CreateAccount(context.Background(), model.Account{
		Name: "Ann", Email: "ann@x.com", Location: "NYC", PasswordHash: "digest",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetAccountByEmail(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		wantID  int64
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				about := ""
				mock.ExpectQuery(`(?s)SELECT .* FROM users\s+WHERE email = \$1`).
					WithArgs("ann@x.com").
					WillReturnRows(pgxmock.NewRows(accountRowColumns).
						AddRow(int64(5), "Ann", "ann@x.com", "NYC", &about, "digest"))
			},
			wantID: 5,
		},
		{
			name: "not-found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`(?s)SELECT .* FROM users\s+WHERE email = \$1`).
					WithArgs("ann@x.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockPostgres(t)
			tt.setup(mock)

			got, err := repo.GetAccountByEmail(context.Background(), "ann@x.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetAccountByID_NotFound(t *testing.T) {
	repo, mock := newMockPostgres(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM users\s+WHERE user_id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetAccountByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
