package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMisconfigured = errors.New("token codec config invalid")
)

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Algorithm     string
	AccessTTL     time.Duration
}

type claims struct {
	AccountID int64 `json:"id"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies access and refresh tokens. Access tokens carry
// an expiry; refresh tokens do not. The two classes use separate secrets.
type TokenCodec struct {
	method        jwt.SigningMethod
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	now           func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

func NewTokenCodec(cfg TokenConfig, opts ...CodecOption) (*TokenCodec, error) {
	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMisconfigured, cfg.Algorithm)
	}
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: both secrets are required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrMisconfigured)
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("%w: access ttl must be positive", ErrMisconfigured)
	}

	c := &TokenCodec{
		method:        method,
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *TokenCodec) SignAccess(accountID int64) (string, error) {
	now := c.now()
	return c.sign(claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}, c.accessSecret)
}

func (c *TokenCodec) SignRefresh(accountID int64) (string, error) {
	return c.sign(claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}, c.refreshSecret)
}

func (c *TokenCodec) VerifyAccess(token string) (int64, error) {
	return c.verify(token, c.accessSecret, true)
}

// VerifyRefresh accepts tokens without an exp claim; refresh tokens stay valid
// for as long as their stored record exists.
func (c *TokenCodec) VerifyRefresh(token string) (int64, error) {
	return c.verify(token, c.refreshSecret, false)
}

func (c *TokenCodec) sign(cl claims, secret []byte) (string, error) {
	signed, err := jwt.NewWithClaims(c.method, cl).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *TokenCodec) verify(token string, secret []byte, requireExp bool) (int64, error) {
	if strings.TrimSpace(token) == "" {
		return 0, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuedAt(),
	}
	if requireExp {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	cl := &claims{}
	parsed, err := jwt.ParseWithClaims(token, cl, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	if cl.AccountID <= 0 {
		return 0, ErrInvalidToken
	}
	return cl.AccountID, nil
}
