// Package views は HTML テンプレートを埋め込み、gin に渡せる形で提供します。
package views

import (
	"embed"
	"html/template"
	"time"
)

// ページテンプレート名
const (
	PageHome    = "home.html"
	PageSignup  = "signup.html"
	PageLogin   = "login.html"
	PageProfile = "profile.html"
	PageError   = "error.html"
)

//go:embed templates/*.html
var files embed.FS

// Load は全テンプレートを解析します。
func Load() (*template.Template, error) {
	return template.New("").
		Funcs(template.FuncMap{
			"date": formatDate,
		}).
		ParseFS(files, "templates/*.html")
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
