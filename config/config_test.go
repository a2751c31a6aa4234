package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != ":5000" {
		t.Errorf("port = %q", cfg.App.Port)
	}
	if cfg.News.Provider != "newsapi" || cfg.News.Timeout != 10*time.Second {
		t.Errorf("unexpected news config %+v", cfg.News)
	}
	if len(cfg.Categories) != 5 || cfg.Categories[0].Name != "Business" {
		t.Errorf("unexpected categories %+v", cfg.Categories)
	}
	if cfg.Aggregator.ArticlesPerCategory != 1 {
		t.Errorf("articles_per_category = %d", cfg.Aggregator.ArticlesPerCategory)
	}
	if cfg.Email.Port != 465 || cfg.Email.Host != "smtp.gmail.com" {
		t.Errorf("unexpected email config %+v", cfg.Email)
	}
	if !cfg.RecencyWindow().Enabled() {
		t.Error("default recency window should be enabled")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
app:
  port: "8080"
news:
  provider: gnews
  timeout: 3s
  recency: 24h
aggregator:
  articles_per_category: 10
categories:
  - name: Science
    query: science research
    emoji: "🔬"
`)
	t.Setenv("NEWS_API_KEY", "from-env")
	t.Setenv("EMAIL_ADDRESS", "me@example.com")
	t.Setenv("EMAIL_RECIPIENTS", "a@example.com, b@example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != ":8080" {
		t.Errorf("port = %q", cfg.App.Port)
	}
	if cfg.News.Provider != "gnews" || cfg.News.APIKey != "from-env" || cfg.News.Timeout != 3*time.Second {
		t.Errorf("unexpected news config %+v", cfg.News)
	}
	if cfg.Aggregator.ArticlesPerCategory != 10 {
		t.Errorf("articles_per_category = %d", cfg.Aggregator.ArticlesPerCategory)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Emoji != "🔬" {
		t.Errorf("unexpected categories %+v", cfg.Categories)
	}
	if cfg.Email.Address != "me@example.com" {
		t.Errorf("email address = %q", cfg.Email.Address)
	}
	if len(cfg.Email.Recipients) != 2 || cfg.Email.Recipients[1] != "b@example.com" {
		t.Errorf("recipients = %v", cfg.Email.Recipients)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"duplicate category", "categories:\n  - {name: A, query: a}\n  - {name: A, query: b}\n"},
		{"missing query", "categories:\n  - {name: A}\n"},
		{"bad recency", "news:\n  recency: sometimes\n"},
		{"zero per category", "aggregator:\n  articles_per_category: 0\n"},
		{"unknown provider", "news:\n  provider: bing\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRequireEmail(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireEmail(); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
	cfg.Email.Address = "me@example.com"
	if err := cfg.RequireEmail(); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential for password, got %v", err)
	}
	cfg.Email.Password = "app-password"
	if err := cfg.RequireEmail(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
