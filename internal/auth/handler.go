package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/accounts"
	"github.com/yourusername/bookshelf/internal/logging"
	"github.com/yourusername/bookshelf/internal/views"
)

const (
	msgTooManyAttempts = "Too many login attempts. Please try again later."
	msgInternal        = "Something went wrong. Please try again."
)

// SignupPage は GET /signup のハンドラーです。
func (m *Manager) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, views.PageSignup, PageData(c, gin.H{"Title": "Sign Up"}))
}

// Signup は POST /signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		m.renderSignup(c, http.StatusBadRequest, form, gin.H{"Error": "Invalid form submission."})
		return
	}
	if messages := validateForm(form); messages != nil {
		m.renderSignup(c, http.StatusBadRequest, form, gin.H{"Errors": messages})
		return
	}

	logger := logging.FromContext(c)
	account, err := m.accounts.Register(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		var verr *accounts.Error
		if errors.As(err, &verr) {
			m.renderSignup(c, http.StatusConflict, form, gin.H{"Error": verr.Message})
			return
		}
		logger.Error().Err(err).Msg("signup failed")
		RenderError(c, http.StatusInternalServerError, msgInternal)
		return
	}

	logger.Info().Str("user", account.Username).Str("account_id", account.ID).Msg("account registered")
	c.Redirect(http.StatusSeeOther, "/login")
}

// LoginPage は GET /login のハンドラーです。
func (m *Manager) LoginPage(c *gin.Context) {
	next := c.Query("next")
	if safeRedirect(next) != next {
		next = ""
	}
	c.HTML(http.StatusOK, views.PageLogin, PageData(c, gin.H{"Title": "Log In", "Next": next}))
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var form credentialsForm
	if err := c.ShouldBind(&form); err != nil {
		m.renderLogin(c, http.StatusBadRequest, form, gin.H{"Error": "Invalid form submission."})
		return
	}
	if messages := validateForm(form); messages != nil {
		m.renderLogin(c, http.StatusBadRequest, form, gin.H{"Errors": messages})
		return
	}

	ctx := c.Request.Context()
	logger := logging.FromContext(c)
	ip := c.ClientIP()

	// 試行制限ストアの障害時はログインを止めない
	retryAfter, err := m.attempts.LockedFor(ctx, ip)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read login attempts")
	}
	if retryAfter > 0 {
		// Retry-After は秒数またはHTTP-Date形式が推奨されているため秒数で返す
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds())+1, 10))
		m.renderLogin(c, http.StatusTooManyRequests, form, gin.H{"Error": msgTooManyAttempts})
		return
	}

	account, err := m.accounts.Authenticate(ctx, m.session(c), form.Username, form.Password)
	if err != nil {
		var verr *accounts.Error
		if errors.As(err, &verr) {
			remaining, ferr := m.attempts.RecordFailure(ctx, ip)
			if ferr != nil {
				logger.Warn().Err(ferr).Msg("failed to record login attempt")
			}
			logger.Info().Str("code", verr.Code).Int("remaining_attempts", remaining).Msg("login rejected")
			m.renderLogin(c, http.StatusUnauthorized, form, gin.H{"Error": verr.Message})
			return
		}
		logger.Error().Err(err).Msg("login failed")
		RenderError(c, http.StatusInternalServerError, msgInternal)
		return
	}

	if err := m.attempts.Reset(ctx, ip); err != nil {
		logger.Warn().Err(err).Msg("failed to reset login attempts")
	}
	logger.Info().Str("user", account.Username).Msg("logged in")
	c.Redirect(http.StatusSeeOther, safeRedirect(form.Next))
}

// Logout は GET /logout のハンドラーです。未ログインでもトップへ戻します。
func (m *Manager) Logout(c *gin.Context) {
	user := CurrentUser(c)
	if err := m.accounts.Logout(m.session(c)); err != nil {
		logging.FromContext(c).Error().Err(err).Msg("logout failed")
		RenderError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	if user != "" {
		logging.FromContext(c).Info().Str("user", user).Msg("logged out")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (m *Manager) renderSignup(c *gin.Context, status int, form credentialsForm, data gin.H) {
	data["Title"] = "Sign Up"
	data["Username"] = form.Username
	c.HTML(status, views.PageSignup, PageData(c, data))
}

func (m *Manager) renderLogin(c *gin.Context, status int, form credentialsForm, data gin.H) {
	next := form.Next
	if safeRedirect(next) != next {
		next = ""
	}
	data["Title"] = "Log In"
	data["Username"] = form.Username
	data["Next"] = next
	c.HTML(status, views.PageLogin, PageData(c, data))
}
