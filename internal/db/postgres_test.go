package db

import (
	"context"
	"database/sql"
	"io/fs"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user-account/backend/internal/config"
	"github.com/user-account/backend/internal/db/migrations"
	"github.com/user-account/backend/internal/model"
)

func TestBuildPostgresURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PostgresConfig
		want    string
		wantErr bool
	}{
		{
			name: "database-url-wins",
			cfg:  config.PostgresConfig{DatabaseURL: "postgres://x@y/z", User: "ignored"},
			want: "postgres://x@y/z",
		},
		{
			name: "assembled",
			cfg:  config.PostgresConfig{Host: "db", Port: "6543", User: "app", Password: "p@ss", Database: "accounts", SSLMode: "require"},
			want: "postgres://app:p%40ss@db:6543/accounts?sslmode=require",
		},
		{
			name: "defaults",
			cfg:  config.PostgresConfig{User: "app", Database: "accounts"},
			want: "postgres://app@localhost:5432/accounts?sslmode=disable",
		},
		{
			name:    "missing-user",
			cfg:     config.PostgresConfig{Database: "accounts"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresURL(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_refresh_tokens.sql"}, files)

	// NewProvider parses sources without touching the database.
	sqlDB, err := sql.Open("pgx", "postgres://unused@127.0.0.1:1/unused")
	require.NoError(t, err)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	require.NoError(t, err)
	sources := provider.ListSources()
	require.Len(t, sources, 2)
	assert.Equal(t, int64(1), sources[0].Version)
	assert.Equal(t, int64(2), sources[1].Version)
}

func TestMemoryStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.CreateAccount(ctx, model.Account{Email: "ann@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = store.CreateAccount(ctx, model.Account{Email: "ann@x.com"})
	assert.ErrorIs(t, err, ErrConflict)

	// Emails are case-preserving, so a different case is a different account.
	second, err := store.CreateAccount(ctx, model.Account{Email: "Ann@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 2, store.AccountCount())

	_, err = store.CreateRefreshToken(ctx, 1, "tok")
	require.NoError(t, err)
	_, err = store.CreateRefreshToken(ctx, 1, "other")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = store.CreateRefreshToken(ctx, 2, "tok")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.FindRefreshTokenByAccount(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetAccountByID(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetAccountByEmail(ctx, "bob@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentRefreshCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.CreateRefreshToken(ctx, 1, string(rune('a'+i)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, ErrConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 15, conflicts)
}
