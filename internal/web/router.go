// Package web はルーティングと蔵書ページのハンドラーを提供します。
package web

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/bookshelf/internal/accounts"
	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/catalog"
	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/logging"
	"github.com/yourusername/bookshelf/internal/views"
)

// Deps はルーターが必要とする依存関係です。
type Deps struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Accounts *accounts.Service
	Catalog  catalog.Reader
	Attempts auth.AttemptStore
}

// NewRouter はミドルウェアとルートを設定した gin.Engine を返します。
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	cfg := d.Config
	router := gin.New()
	router.Use(logging.Middleware(d.Logger), gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	// セッションストアの設定（クッキー署名鍵は必須）
	router.Use(sessions.Sessions(auth.SessionCookieName, auth.NewCookieStore(cfg)))

	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token"}
		router.Use(cors.New(corsConfig))
	}

	authManager := auth.NewManager(cfg, d.Accounts, d.Attempts)
	router.Use(authManager.LoadSession(), authManager.VerifyCSRF())

	h := &Handler{
		version:  cfg.Version,
		accounts: d.Accounts,
		catalog:  d.Catalog,
	}

	router.GET("/health", h.Health)
	router.GET("/", h.Home)

	router.GET("/signup", authManager.SignupPage)
	router.POST("/signup", authManager.Signup)
	router.GET("/login", authManager.LoginPage)
	router.POST("/login", authManager.Login)
	router.GET("/logout", authManager.Logout)

	protected := router.Group("")
	protected.Use(authManager.RequireLogin())
	{
		protected.GET("/profile/:username", h.Profile)
	}

	router.NoRoute(h.NotFound)
	return router, nil
}
