package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/user-account/backend/internal/auth"
	"github.com/user-account/backend/internal/db"
	"github.com/user-account/backend/internal/model"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStorage            = errors.New("storage error")
)

// StorageError wraps a repository failure. errors.Is(err, ErrStorage) holds
// for every StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

type AccountRepo interface {
	CreateAccount(ctx context.Context, account model.Account) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error)
}

type RefreshTokenRepo interface {
	FindRefreshTokenByAccount(ctx context.Context, accountID int64) (*model.RefreshTokenRecord, error)
	CreateRefreshToken(ctx context.Context, accountID int64, token string) (*model.RefreshTokenRecord, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenCodec interface {
	SignAccess(accountID int64) (string, error)
	SignRefresh(accountID int64) (string, error)
	VerifyAccess(token string) (int64, error)
	VerifyRefresh(token string) (int64, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Location string
	About    *string
	Password string
}

type AuthResult struct {
	Account      *model.Account
	AccessToken  string
	RefreshToken string
}

func (r *AuthResult) Response() model.AuthenticatedAccount {
	return model.AuthenticatedAccount{
		AccountProfile: model.ProfileOf(r.Account),
		UserToken: model.UserToken{
			Token:        r.AccessToken,
			TokenType:    model.TokenTypeBearer,
			RefreshToken: r.RefreshToken,
		},
	}
}

type AuthService struct {
	accounts AccountRepo
	tokens   RefreshTokenRepo
	hasher   PasswordHasher
	codec    TokenCodec
	logger   zerolog.Logger
}

func NewAuthService(accounts AccountRepo, tokens RefreshTokenRepo, hasher PasswordHasher, codec TokenCodec, logger zerolog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		codec:    codec,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	in = normalizeRegisterInput(in)
	if in.Name == "" || in.Email == "" || in.Location == "" || strings.TrimSpace(in.Password) == "" {
		return ErrInvalidInput
	}

	_, err := s.accounts.GetAccountByEmail(ctx, in.Email)
	if err == nil {
		return ErrDuplicateEmail
	}
	if !errors.Is(err, db.ErrNotFound) {
		return s.storageError("lookup account", err)
	}

	// bcrypt is slow; skip it when the caller has already gone away.
	if err := ctx.Err(); err != nil {
		return err
	}
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return ErrInvalidInput
		}
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.accounts.CreateAccount(ctx, model.Account{
		Name:         in.Name,
		Email:        in.Email,
		Location:     in.Location,
		About:        in.About,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return ErrDuplicateEmail
		}
		return s.storageError("create account", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, s.storageError("lookup account", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	record, err := s.ensureRefreshToken(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.SignAccess(account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: record.Token,
	}, nil
}

func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	accountID, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, s.storageError("lookup account", err)
	}

	if _, err := s.tokens.FindRefreshTokenByAccount(ctx, account.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, s.storageError("lookup refresh token", err)
	}

	accessToken, err := s.codec.SignAccess(account.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Authenticate resolves the account behind an access token. Unknown accounts
// are reported as ErrUnauthorized, same as a bad token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.Account, error) {
	accountID, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, s.storageError("lookup account", err)
	}
	return account, nil
}

// ensureRefreshToken returns the account's stored refresh token, creating it
// on first login. A concurrent first login that wins the insert is picked up
// by re-reading after the conflict.
func (s *AuthService) ensureRefreshToken(ctx context.Context, accountID int64) (*model.RefreshTokenRecord, error) {
	record, err := s.tokens.FindRefreshTokenByAccount(ctx, accountID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, s.storageError("lookup refresh token", err)
	}

	token, err := s.codec.SignRefresh(accountID)
	if err != nil {
		return nil, err
	}

	record, err = s.tokens.CreateRefreshToken(ctx, accountID, token)
	if err == nil {
		s.logger.Info().Int64("account_id", accountID).Msg("issued refresh token")
		return record, nil
	}
	if !errors.Is(err, db.ErrConflict) {
		return nil, s.storageError("create refresh token", err)
	}

	record, err = s.tokens.FindRefreshTokenByAccount(ctx, accountID)
	if err != nil {
		return nil, s.storageError("lookup refresh token after conflict", err)
	}
	return record, nil
}

func (s *AuthService) storageError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.logger.Error().Err(err).Str("op", op).Msg("storage failure")
	return &StorageError{Op: op, Err: err}
}

func normalizeRegisterInput(in RegisterInput) RegisterInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Location = strings.TrimSpace(in.Location)
	if in.About != nil {
		about := strings.TrimSpace(*in.About)
		in.About = &about
	}
	return in
}
