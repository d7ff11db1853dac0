package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8000"`
	GinMode        string   `env:"GIN_MODE" envDefault:"release"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	StorageDriver  string   `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER"`
	Password    string `env:"DB_PASSWORD"`
	Database    string `env:"DB_NAME"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
}

type RedisConfig struct {
	URL      string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"ACCOUNT_CACHE_TTL" envDefault:"5m"`
}

// AuthConfig holds the token codec and hasher settings. AccessTTLSeconds is
// expressed in seconds to match TOKEN_EXPIRY_LIMIT.
type AuthConfig struct {
	AccessSecret     string `env:"SECRET_KEY"`
	RefreshSecret    string `env:"REFRESH_TOKEN_SECRET"`
	Algorithm        string `env:"TOKEN_CREATION_ALGORITHM" envDefault:"HS256"`
	AccessTTLSeconds int    `env:"TOKEN_EXPIRY_LIMIT" envDefault:"1800"`
	BcryptCost       int    `env:"BCRYPT_COST" envDefault:"10"`
}

func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLSeconds) * time.Second
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.AccessSecret) == "" {
		return fmt.Errorf("%w: SECRET_KEY is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Auth.RefreshSecret) == "" {
		return fmt.Errorf("%w: REFRESH_TOKEN_SECRET is required", ErrInvalidConfig)
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return fmt.Errorf("%w: SECRET_KEY and REFRESH_TOKEN_SECRET must differ", ErrInvalidConfig)
	}
	if c.Auth.AccessTTLSeconds <= 0 {
		return fmt.Errorf("%w: TOKEN_EXPIRY_LIMIT must be positive", ErrInvalidConfig)
	}
	switch c.Server.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORAGE_DRIVER %q", ErrInvalidConfig, c.Server.StorageDriver)
	}
	return nil
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Server.Port, ":") {
		return c.Server.Port
	}
	return ":" + c.Server.Port
}
