package db

import (
	"context"
	"sync"

	"github.com/user-account/backend/internal/model"
)

// MemoryStore keeps accounts and refresh tokens in process memory with the
// same uniqueness rules as the Postgres schema. It backs STORAGE_DRIVER=memory
// and the service tests.
type MemoryStore struct {
	mu            sync.RWMutex
	nextAccountID int64
	nextTokenID   int64
	accounts      map[int64]model.Account
	emails        map[string]int64
	refreshTokens map[int64]model.RefreshTokenRecord
	tokens        map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[int64]model.Account),
		emails:        make(map[string]int64),
		refreshTokens: make(map[int64]model.RefreshTokenRecord),
		tokens:        make(map[string]struct{}),
	}
}

func (m *MemoryStore) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emails[account.Email]; ok {
		return nil, ErrConflict
	}
	m.nextAccountID++
	account.ID = m.nextAccountID
	m.accounts[account.ID] = account
	m.emails[account.Email] = account.ID
	return &account, nil
}

func (m *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return nil, ErrNotFound
	}
	account := m.accounts[id]
	return &account, nil
}

func (m *MemoryStore) GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (m *MemoryStore) FindRefreshTokenByAccount(ctx context.Context, accountID int64) (*model.RefreshTokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.refreshTokens[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *MemoryStore) CreateRefreshToken(ctx context.Context, accountID int64, token string) (*model.RefreshTokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.refreshTokens[accountID]; ok {
		return nil, ErrConflict
	}
	if _, ok := m.tokens[token]; ok {
		return nil, ErrConflict
	}
	m.nextTokenID++
	record := model.RefreshTokenRecord{
		ID:        m.nextTokenID,
		Token:     token,
		TokenType: model.TokenTypeBearer,
		AccountID: accountID,
	}
	m.refreshTokens[accountID] = record
	m.tokens[token] = struct{}{}
	return &record, nil
}

// AccountCount is used by tests to assert on table cardinality.
func (m *MemoryStore) AccountCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}
