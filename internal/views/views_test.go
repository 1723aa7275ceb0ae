package views

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoadDefinesAllPages(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	for _, name := range []string{PageHome, PageSignup, PageLogin, PageProfile, PageError} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("template %q is not defined", name)
		}
	}
}

func TestErrorMessageIsEscaped(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	var buf bytes.Buffer
	data := map[string]any{"Error": "Password doesn't match. Please try again."}
	if err := tmpl.ExecuteTemplate(&buf, PageLogin, data); err != nil {
		t.Fatalf("ExecuteTemplate returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Password doesn&#39;t match. Please try again.") {
		t.Fatalf("escaped message not found in:\n%s", buf.String())
	}
}

func TestHomeNavigationDependsOnUser(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	var anon bytes.Buffer
	if err := tmpl.ExecuteTemplate(&anon, PageHome, map[string]any{}); err != nil {
		t.Fatalf("ExecuteTemplate returned error: %v", err)
	}
	if !strings.Contains(anon.String(), "login") {
		t.Fatal("anonymous home page should link to login")
	}

	var signedIn bytes.Buffer
	if err := tmpl.ExecuteTemplate(&signedIn, PageHome, map[string]any{"CurrentUser": "me1"}); err != nil {
		t.Fatalf("ExecuteTemplate returned error: %v", err)
	}
	if strings.Contains(signedIn.String(), "login") {
		t.Fatalf("signed-in home page should not mention login:\n%s", signedIn.String())
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(nil); got != "" {
		t.Fatalf("formatDate(nil) = %q", got)
	}
	d := time.Date(1960, time.July, 11, 0, 0, 0, 0, time.UTC)
	if got := formatDate(&d); got != "July 11, 1960" {
		t.Fatalf("formatDate = %q", got)
	}
}
