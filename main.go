package main

// @title User Account API
// @version 1.0
// @description Registration, login and token refresh for user accounts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/user-account/backend/internal/auth"
	"github.com/user-account/backend/internal/cache"
	"github.com/user-account/backend/internal/config"
	"github.com/user-account/backend/internal/db"
	"github.com/user-account/backend/internal/handler"
	"github.com/user-account/backend/internal/logging"
	"github.com/user-account/backend/internal/service"
)

const appName = "user-account"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	displayAppName(appName)
	gin.SetMode(cfg.Server.GinMode)

	accounts, tokens, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		Algorithm:     cfg.Auth.Algorithm,
		AccessTTL:     cfg.Auth.AccessTTL(),
	})
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	authService := service.NewAuthService(accounts, tokens, auth.NewHasher(cfg.Auth.BcryptCost), codec, logger)
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.NewRouter(authService, logger, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// openStore builds the account and refresh token repositories for the
// configured driver. The Redis account cache is layered on when REDIS_URL is set.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (service.AccountRepo, service.RefreshTokenRepo, func(), error) {
	var (
		accounts cache.AccountStore
		tokens   service.RefreshTokenRepo
		closers  []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Server.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		store := db.NewMemoryStore()
		accounts, tokens = store, store
	default:
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		results, err := db.Migrate(ctx, pool)
		if err != nil {
			closeAll()
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Int("applied", len(results)).Msg("migrations complete")

		store := db.NewPostgres(pool)
		accounts, tokens = store, store
	}

	if cfg.Redis.URL == "" {
		return accounts, tokens, closeAll, nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		closeAll()
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	closers = append(closers, func() { _ = rdb.Close() })
	logger.Info().Dur("ttl", cfg.Redis.CacheTTL).Msg("account cache enabled")

	return cache.NewCachedAccounts(accounts, rdb, cfg.Redis.CacheTTL, logger), tokens, closeAll, nil
}

func displayAppName(name string) {
	figure.NewFigure(name, "cybermedium", true).Print()
	fmt.Println()
}
