package auth

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/accounts"
	"github.com/yourusername/bookshelf/internal/config"
)

const (
	sessionKeyUser       = "auth_user"
	sessionKeyAccountID  = "auth_account_id"
	sessionKeyIssuedAt   = "issued_at"
	sessionKeyLastActive = "last_activity"
	sessionKeyCSRF       = "csrf_token"
)

// NewCookieStore は署名付きクッキーのセッションストアを作成します。
// Secure 属性は本番モードのときだけ付与します。
func NewCookieStore(cfg *config.Config) cookie.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Session は gin-contrib/sessions のクッキーセッションを accounts.Session として扱います。
type Session struct {
	store sessions.Session
	now   func() time.Time
}

var _ accounts.Session = (*Session)(nil)

func newSession(c *gin.Context, now func() time.Time) *Session {
	return &Session{store: sessions.Default(c), now: now}
}

// SetAuthenticated はアカウントをログイン状態にし、CSRFトークンを再発行します。
func (s *Session) SetAuthenticated(account *accounts.Account) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	now := s.now()
	s.store.Clear()
	s.store.Set(sessionKeyUser, account.Username)
	s.store.Set(sessionKeyAccountID, account.ID)
	s.store.Set(sessionKeyIssuedAt, now.Unix())
	s.store.Set(sessionKeyLastActive, now.Unix())
	s.store.Set(sessionKeyCSRF, token)
	return s.store.Save()
}

// Clear はログイン状態を解除します。
func (s *Session) Clear() error {
	s.store.Clear()
	return s.store.Save()
}

func (s *Session) IsAuthenticated() bool {
	return s.Username() != ""
}

// Username はログイン中のユーザー名を返します。
func (s *Session) Username() string {
	user, _ := s.store.Get(sessionKeyUser).(string)
	return user
}

// expired は寿命またはアイドル時間を超えているかを判定します。
func (s *Session) expired(maxLifetime, idleTimeout time.Duration) bool {
	now := s.now()
	issuedAt := readUnix(s.store.Get(sessionKeyIssuedAt))
	lastActive := readUnix(s.store.Get(sessionKeyLastActive))

	if issuedAt.IsZero() || now.Sub(issuedAt) > maxLifetime {
		return true
	}
	if lastActive.IsZero() || now.Sub(lastActive) > idleTimeout {
		return true
	}
	return false
}

func (s *Session) touch() {
	s.store.Set(sessionKeyLastActive, s.now().Unix())
}

func (s *Session) csrfToken() string {
	token, _ := s.store.Get(sessionKeyCSRF).(string)
	return token
}
