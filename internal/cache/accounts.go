// Package cache provides a Redis read-through cache for account lookups by id.
//
// Accounts are never updated or deleted by this service, so entries only
// expire by TTL and no invalidation path exists.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/user-account/backend/internal/model"
)

const keyPrefix = "account:"

// AccountStore is the repository being fronted.
type AccountStore interface {
	CreateAccount(ctx context.Context, account model.Account) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error)
}

type CachedAccounts struct {
	next   AccountStore
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedAccounts(next AccountStore, rdb redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *CachedAccounts {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedAccounts{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "account_cache").Logger(),
	}
}

// NewRedisClient parses a redis:// URL and checks connectivity.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (c *CachedAccounts) CreateAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	return c.next.CreateAccount(ctx, account)
}

func (c *CachedAccounts) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return c.next.GetAccountByEmail(ctx, email)
}

// GetAccountByID serves from Redis when possible. Redis failures are logged
// and the lookup falls through to the underlying store.
func (c *CachedAccounts) GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error) {
	key := accountKey(accountID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var account model.Account
		if jsonErr := json.Unmarshal(raw, &account); jsonErr == nil {
			return &account, nil
		}
		c.logger.Warn().Int64("account_id", accountID).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Int64("account_id", accountID).Msg("cache read failed")
	}

	account, err := c.next.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(account); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Int64("account_id", accountID).Msg("cache write failed")
		}
	}
	return account, nil
}

func accountKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}
