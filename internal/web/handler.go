package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/bookshelf/internal/accounts"
	"github.com/yourusername/bookshelf/internal/auth"
	"github.com/yourusername/bookshelf/internal/catalog"
	"github.com/yourusername/bookshelf/internal/logging"
	"github.com/yourusername/bookshelf/internal/views"
)

// Handler は蔵書ページとプロフィールを描画します。
type Handler struct {
	version  string
	accounts *accounts.Service
	catalog  catalog.Reader
}

// Health はヘルスチェックエンドポイントのハンドラーです。
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "bookshelf",
		"version": h.version,
	})
}

// Home はトップページ（全書籍一覧）です。
func (h *Handler) Home(c *gin.Context) {
	books, err := h.catalog.ListBooks(c.Request.Context())
	if err != nil {
		logging.FromContext(c).Error().Err(err).Msg("failed to list books")
		auth.RenderError(c, http.StatusInternalServerError, "Could not load books. Please try again.")
		return
	}
	c.HTML(http.StatusOK, views.PageHome, auth.PageData(c, gin.H{"Books": books}))
}

// Profile はアカウントのプロフィールページです。
func (h *Handler) Profile(c *gin.Context) {
	account, err := h.accounts.Lookup(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			auth.RenderError(c, http.StatusNotFound, "No user with that username.")
			return
		}
		logging.FromContext(c).Error().Err(err).Msg("failed to load profile")
		auth.RenderError(c, http.StatusInternalServerError, "Could not load profile. Please try again.")
		return
	}
	c.HTML(http.StatusOK, views.PageProfile, auth.PageData(c, gin.H{
		"Title":       account.Username,
		"Profile":     account,
		"MemberSince": &account.CreatedAt,
	}))
}

// NotFound は未定義ルートのハンドラーです。
func (h *Handler) NotFound(c *gin.Context) {
	auth.RenderError(c, http.StatusNotFound, "Page not found.")
}
