// Package main は蔵書アプリの HTTP サーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bookshelf/internal/accounts"
	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/logging"
	"github.com/yourusername/bookshelf/internal/store"
	"github.com/yourusername/bookshelf/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg)
	if cfg.EphemeralSessionSecret {
		logger.Warn().Msg("SESSION_SECRET is not set; sessions will not survive a restart")
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open database")
	}
	defer db.Close()

	if cfg.SeedCatalog {
		n, err := db.Books().SeedSamples(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to seed catalog")
		}
		logger.Info().Int("books", n).Msg("catalog seeded")
	}

	attempts, closeAttempts, err := setupAttemptStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up login throttling")
	}
	defer closeAttempts()

	svc := accounts.NewService(db.Accounts(), accounts.NewBcryptHasher(cfg.BcryptCost))
	router, err := web.NewRouter(web.Deps{
		Config:   cfg,
		Logger:   logger,
		Accounts: svc,
		Catalog:  db.Books(),
		Attempts: attempts,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Str("mode", cfg.GinMode).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// setupAttemptStore は RATE_LIMIT_REDIS_URL があれば Redis、なければメモリを使います。
func setupAttemptStore(ctx context.Context, cfg *config.Config) (auth.AttemptStore, func(), error) {
	policy := auth.PolicyFromConfig(cfg)
	if cfg.RateLimitRedisURL == "" {
		return auth.NewMemoryAttemptStore(policy), func() {}, nil
	}

	opt, err := redis.ParseURL(cfg.RateLimitRedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	return auth.NewRedisAttemptStore(rdb, policy), func() { _ = rdb.Close() }, nil
}
