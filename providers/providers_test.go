package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/JerryLinyx/newsdigest/news"
)

func newServer(t *testing.T, status int, body string, seen *url.URL, header *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r.URL
		}
		if header != nil {
			*header = r.Header.Clone()
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const newsAPIBody = `{
  "status": "ok",
  "totalResults": 1,
  "articles": [{
    "source": {"id": null, "name": "Wired"},
    "author": "Jane Doe",
    "title": "Robots learn to fold laundry",
    "description": "A short description",
    "url": "https://example.com/robots",
    "urlToImage": null,
    "publishedAt": "2024-05-10T08:00:00Z",
    "content": "The full content… [+2000 chars]"
  }]
}`

func TestNewsAPIFetch(t *testing.T) {
	var seen url.URL
	srv := newServer(t, http.StatusOK, newsAPIBody, &seen, nil)
	p := NewNewsAPI(Options{APIKey: "k", BaseURL: srv.URL, Language: "en", Country: "us"}, srv.Client())

	since := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	got, err := p.Fetch(context.Background(), news.Query{Terms: "technology tech", Max: 1, Since: since})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if seen.Path != "/everything" {
		t.Errorf("path = %q", seen.Path)
	}
	q := seen.Query()
	if q.Get("q") != "technology tech" || q.Get("pageSize") != "1" || q.Get("sortBy") != "publishedAt" ||
		q.Get("apiKey") != "k" || q.Get("from") != "2024-05-10" || q.Get("language") != "en" {
		t.Errorf("unexpected query %v", q)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	a := got[0]
	if a.SourceName != "Wired" || a.Author != "Jane Doe" || a.Image != "" || a.Title != "Robots learn to fold laundry" {
		t.Errorf("unexpected article %+v", a)
	}
}

func TestNewsAPIFetchWithoutSinceOmitsFrom(t *testing.T) {
	var seen url.URL
	srv := newServer(t, http.StatusOK, newsAPIBody, &seen, nil)
	p := NewNewsAPI(Options{BaseURL: srv.URL}, srv.Client())

	if _, err := p.Fetch(context.Background(), news.Query{Terms: "x", Max: 1}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, ok := seen.Query()["from"]; ok {
		t.Errorf("from should be omitted, got %v", seen.Query())
	}
}

func TestNewsAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`, ErrHTTPStatus},
		{"upstream error", http.StatusOK, `{"status":"error","code":"rateLimited","message":"slow down"}`, ErrUpstream},
		{"malformed", http.StatusOK, `not json`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body, nil, nil)
			p := NewNewsAPI(Options{BaseURL: srv.URL}, srv.Client())
			_, err := p.Fetch(context.Background(), news.Query{Terms: "x", Max: 1})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var perr *ProviderError
			if !errors.As(err, &perr) || perr.Provider != "newsapi" {
				t.Errorf("expected ProviderError, got %T", err)
			}
		})
	}
}

func TestNewsAPITopHeadlines(t *testing.T) {
	var seen url.URL
	srv := newServer(t, http.StatusOK, newsAPIBody, &seen, nil)
	p := NewNewsAPI(Options{BaseURL: srv.URL, Country: "us"}, srv.Client())

	got, err := p.TopHeadlines(context.Background(), "technology", 10)
	if err != nil {
		t.Fatalf("TopHeadlines: %v", err)
	}
	if seen.Path != "/top-headlines" || seen.Query().Get("category") != "technology" || seen.Query().Get("country") != "us" {
		t.Errorf("unexpected request %v", seen.String())
	}
	if len(got) != 1 {
		t.Errorf("expected 1 article, got %d", len(got))
	}
}

func TestGNewsFetch(t *testing.T) {
	body := `{"totalArticles": 1, "articles": [{
	  "title": "Markets rally",
	  "description": "Stocks up",
	  "content": "Long content",
	  "url": "https://example.com/markets",
	  "image": "https://example.com/m.png",
	  "publishedAt": "2024-05-10T09:00:00Z",
	  "source": {"name": "Reuters", "url": "https://reuters.com"}
	}]}`
	var seen url.URL
	srv := newServer(t, http.StatusOK, body, &seen, nil)
	p := NewGNews(Options{BaseURL: srv.URL, Language: "en", Country: "us"}, srv.Client())

	got, err := p.Fetch(context.Background(), news.Query{Terms: "stock market", Max: 1, Since: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	q := seen.Query()
	if seen.Path != "/search" || q.Get("apikey") != "demo" || q.Get("max") != "1" || q.Get("from") != "2024-05-10T00:00:00Z" {
		t.Errorf("unexpected request %v", seen.String())
	}
	if len(got) != 1 || got[0].SourceName != "Reuters" || got[0].Image != "https://example.com/m.png" {
		t.Errorf("unexpected articles %+v", got)
	}
}

func TestWorldNewsFetch(t *testing.T) {
	body := `{"offset":0,"number":1,"available":1,"news":[{
	  "id": 1,
	  "title": "Election results",
	  "text": "Full text",
	  "summary": "Summary",
	  "url": "https://example.com/e",
	  "image": null,
	  "publish_date": "2024-05-10 07:00:00",
	  "authors": ["A. Writer", "B. Writer"]
	}]}`
	var seen url.URL
	var header http.Header
	srv := newServer(t, http.StatusOK, body, &seen, &header)
	p := NewWorldNews(Options{APIKey: "wk", BaseURL: srv.URL, Language: "en", Country: "us"}, srv.Client())

	got, err := p.Fetch(context.Background(), news.Query{Terms: "politics", Max: 2, Since: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if header.Get("x-api-key") != "wk" {
		t.Errorf("x-api-key = %q", header.Get("x-api-key"))
	}
	q := seen.Query()
	if seen.Path != "/search-news" || q.Get("text") != "politics" || q.Get("number") != "2" || q.Get("earliest-publish-date") != "2024-05-10 00:00:00" {
		t.Errorf("unexpected request %v", seen.String())
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	a := got[0]
	if a.Author != "A. Writer, B. Writer" || a.Content != "Full text" || a.Description != "Summary" || a.SourceName != "" {
		t.Errorf("unexpected article %+v", a)
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Feed</title>
  <link>https://example.com</link>
  <description>Example</description>
  <item>
    <title>Fresh item</title>
    <link>https://example.com/fresh</link>
    <description>&lt;p&gt;Fresh description&lt;/p&gt;</description>
    <pubDate>Fri, 10 May 2024 10:00:00 +0000</pubDate>
    <enclosure url="https://example.com/fresh.jpg" type="image/jpeg" length="1"/>
  </item>
  <item>
    <title>Old item</title>
    <link>https://example.com/old</link>
    <description>Old description</description>
    <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
  </item>
</channel>
</rss>`

func TestRSSFetch(t *testing.T) {
	srv := newServer(t, http.StatusOK, rssBody, nil, nil)
	p := NewRSS(srv.Client())

	got, err := p.Fetch(context.Background(), news.Query{Terms: srv.URL, Max: 5, Since: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the fresh item, got %d", len(got))
	}
	a := got[0]
	if a.Title != "Fresh item" || a.SourceName != "Example Feed" || a.Image != "https://example.com/fresh.jpg" {
		t.Errorf("unexpected article %+v", a)
	}
	if a.PublishedAt != "2024-05-10T10:00:00Z" {
		t.Errorf("PublishedAt = %q", a.PublishedAt)
	}

	all, err := p.Fetch(context.Background(), news.Query{Terms: srv.URL, Max: 5})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 items without recency, got %d", len(all))
	}
}

func TestRSSFetchHTTPError(t *testing.T) {
	srv := newServer(t, http.StatusNotFound, "missing", nil, nil)
	p := NewRSS(srv.Client())

	_, err := p.Fetch(context.Background(), news.Query{Terms: srv.URL, Max: 1})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("expected ErrHTTPStatus, got %v", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		name string
		err  bool
	}{
		{"", "newsapi", false},
		{"newsapi", "newsapi", false},
		{"GNews", "gnews", false},
		{"worldnews", "worldnews", false},
		{"rss", "rss", false},
		{"bing", "", true},
	}
	for _, tt := range tests {
		p, err := New(Options{Kind: tt.kind})
		if tt.err {
			if !errors.Is(err, ErrUnknownProvider) {
				t.Errorf("New(%q): expected ErrUnknownProvider, got %v", tt.kind, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q): %v", tt.kind, err)
			continue
		}
		if p.Name() != tt.name {
			t.Errorf("New(%q).Name() = %q, want %q", tt.kind, p.Name(), tt.name)
		}
	}
}
