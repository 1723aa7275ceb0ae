// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// データベースドライバー名
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"` // debug, release, test
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Version  string `env:"VERSION" envDefault:"0.1.0"`

	// セッション設定
	SessionSecret        string `env:"SESSION_SECRET"` // クッキー署名鍵
	SessionMaxAgeMinutes int    `env:"SESSION_MAX_AGE_MINUTES" envDefault:"720"`
	SessionIdleMinutes   int    `env:"SESSION_IDLE_MINUTES" envDefault:"30"`
	CSRFEnabled          bool   `env:"CSRF_ENABLED" envDefault:"true"`

	// CORS許可オリジン（カンマ区切り、空なら無効）
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	// データベース設定
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"file:bookshelf.db?_pragma=foreign_keys(1)"`
	SeedCatalog    bool   `env:"SEED_CATALOG" envDefault:"false"`

	// ログイン試行制限（空の Redis URL ならプロセス内で管理）
	RateLimitRedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
	LoginMaxAttempts   int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindowMinutes int    `env:"LOGIN_WINDOW_MINUTES" envDefault:"15"`
	LoginLockMinutes   int    `env:"LOGIN_LOCK_MINUTES" envDefault:"10"`

	// bcrypt のコスト（0 なら bcrypt.DefaultCost）
	BcryptCost int `env:"BCRYPT_COST" envDefault:"0"`

	// SessionSecret が未設定のため起動時に生成した場合 true
	EphemeralSessionSecret bool
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// 開発環境では署名鍵を都度生成する（再起動でセッションは失効する）
	if config.SessionSecret == "" && config.GinMode != "release" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		config.SessionSecret = secret
		config.EphemeralSessionSecret = true
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.LoginMaxAttempts <= 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive")
	}

	// 本番環境では署名鍵を厳格にチェックする
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 bytes in release mode")
		}
	}

	return nil
}

// SessionMaxAge はセッションの最大寿命です。
func (c *Config) SessionMaxAge() time.Duration {
	return minutesOr(c.SessionMaxAgeMinutes, 12*time.Hour)
}

// SessionIdleTimeout は無操作で失効するまでの時間です。
func (c *Config) SessionIdleTimeout() time.Duration {
	return minutesOr(c.SessionIdleMinutes, 30*time.Minute)
}

// LoginWindow は失敗回数を数える期間です。
func (c *Config) LoginWindow() time.Duration {
	return minutesOr(c.LoginWindowMinutes, 15*time.Minute)
}

// LoginLock はロック期間です。
func (c *Config) LoginLock() time.Duration {
	return minutesOr(c.LoginLockMinutes, 10*time.Minute)
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsRelease は本番モードかどうかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func minutesOr(minutes int, fallback time.Duration) time.Duration {
	if minutes <= 0 {
		return fallback
	}
	return time.Duration(minutes) * time.Minute
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
