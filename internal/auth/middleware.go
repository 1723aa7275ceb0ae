package auth

import (
	"crypto/subtle"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/logging"
)

// LoadSession はセッションを読み込み、期限切れなら破棄します。
// 有効なログイン状態であれば ContextUserKey にユーザー名を設定します。
func (m *Manager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := m.session(c)
		logger := logging.FromContext(c)
		changed := false

		if user := session.Username(); user != "" {
			if session.expired(m.cfg.SessionMaxAge(), m.cfg.SessionIdleTimeout()) {
				session.store.Clear()
				logger.Debug().Str("user", user).Msg("session expired")
			} else {
				session.touch()
				c.Set(ContextUserKey, user)
			}
			changed = true
		}

		token := session.csrfToken()
		if m.cfg.CSRFEnabled && token == "" {
			var err error
			token, err = generateToken()
			if err != nil {
				RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
				c.Abort()
				return
			}
			session.store.Set(sessionKeyCSRF, token)
			changed = true
		}
		if m.cfg.CSRFEnabled {
			c.Set(contextCSRFKey, token)
		}

		if changed {
			if err := session.store.Save(); err != nil {
				logger.Warn().Err(err).Msg("failed to save session")
			}
		}
		c.Next()
	}
}

// RequireLogin は未ログインのリクエストをログインページへリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == "" {
			c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// VerifyCSRF は状態変更系リクエストの CSRF トークンを検証します。
// トークンはフォームの csrf_token か X-CSRF-Token ヘッダーで受け付けます。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.cfg.CSRFEnabled || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		expected := c.GetString(contextCSRFKey)
		received := c.GetHeader(csrfHeader)
		if received == "" {
			received = c.PostForm(csrfFormField)
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			logging.FromContext(c).Warn().Str("path", c.Request.URL.Path).Msg("csrf token mismatch")
			RenderError(c, http.StatusForbidden, "Your form has expired. Please reload the page and try again.")
			c.Abort()
			return
		}

		c.Next()
	}
}
