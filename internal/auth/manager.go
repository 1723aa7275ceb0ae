// Package auth はセッションベースの認証（サインアップ・ログイン・ログアウト）と
// それを支えるミドルウェアを提供します。
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/accounts"
	"github.com/yourusername/bookshelf/internal/config"
	"github.com/yourusername/bookshelf/internal/views"
)

const (
	SessionCookieName = "bookshelf_session"

	// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
	ContextUserKey = "auth.user"
	contextCSRFKey = "auth.csrf"

	csrfHeader    = "X-CSRF-Token"
	csrfFormField = "csrf_token"
)

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	cfg      *config.Config
	accounts *accounts.Service
	attempts AttemptStore
	now      func() time.Time
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, svc *accounts.Service, attempts AttemptStore) *Manager {
	return &Manager{
		cfg:      cfg,
		accounts: svc,
		attempts: attempts,
		now:      time.Now,
	}
}

// CurrentUser はログイン中のユーザー名を返します（未ログインなら空文字）。
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}

// PageData はテンプレート共通の値（ログインユーザー・CSRFトークン）を data に追加します。
func PageData(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = CurrentUser(c)
	data["CSRFToken"] = c.GetString(contextCSRFKey)
	return data
}

// RenderError はエラーページを描画します。
func RenderError(c *gin.Context, status int, message string) {
	c.HTML(status, views.PageError, PageData(c, gin.H{
		"Title":  http.StatusText(status),
		"Status": http.StatusText(status),
		"Error":  message,
	}))
}

func (m *Manager) session(c *gin.Context) *Session {
	return newSession(c, m.now)
}

// safeRedirect は next がサイト内パスの場合のみそれを返し、それ以外は "/" を返します。
func safeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
