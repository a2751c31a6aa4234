package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JerryLinyx/newsdigest/config"
)

func newsAPIStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") != "tech" {
			fmt.Fprint(w, `{"status":"ok","articles":[]}`)
			return
		}
		fmt.Fprint(w, `{"status":"ok","articles":[{
			"source":{"name":"Wired"},
			"title":"Chips get faster",
			"description":"A new generation of chips.",
			"url":"https://example.com/chips",
			"publishedAt":"2024-05-10T08:00:00Z"
		}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`app:
  name: Test News
news:
  provider: newsapi
  api_key: test
  base_url: %s
summarizer:
  enabled: false
categories:
  - name: Technology
    query: tech
    emoji: "💻"
  - name: Business
    query: biz
    emoji: "💼"
`, baseURL)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDigestDryRun(t *testing.T) {
	srv := newsAPIStub(t)
	path := writeConfig(t, srv.URL)

	out, err := execute(t, "digest", "--dry-run", "--config", path)
	if err != nil {
		t.Fatalf("digest --dry-run: %v\n%s", err, out)
	}
	for _, want := range []string{
		"💻 Chips get faster",
		"<b>Author:</b> Wired",
		"No Business news available",
		`<a href="https://example.com/chips">Read Full Article</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDigestRequiresEmailCredentials(t *testing.T) {
	srv := newsAPIStub(t)
	path := writeConfig(t, srv.URL)
	t.Setenv("EMAIL_ADDRESS", "")
	t.Setenv("EMAIL_PASSWORD", "")

	_, err := execute(t, "digest", "--dry-run=false", "--config", path)
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "newsdigest 1.2.3 (commit: abc") {
		t.Errorf("unexpected version output %q", out)
	}
}
