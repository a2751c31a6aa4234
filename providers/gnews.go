package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JerryLinyx/newsdigest/news"
)

const GNewsBaseURL = "https://gnews.io/api/v4"

// GNews talks to gnews.io. Without a key it uses the "demo" key.
type GNews struct {
	apiKey   string
	baseURL  string
	language string
	country  string
	client   *http.Client
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	URL         *string `json:"url"`
	Image       *string `json:"image"`
	PublishedAt *string `json:"publishedAt"`
	Source      *struct {
		Name *string `json:"name"`
		URL  *string `json:"url"`
	} `json:"source"`
}

func NewGNews(opts Options, hc *http.Client) *GNews {
	base := opts.BaseURL
	if base == "" {
		base = GNewsBaseURL
	}
	key := opts.APIKey
	if key == "" {
		key = "demo"
	}
	return &GNews{
		apiKey:   key,
		baseURL:  strings.TrimRight(base, "/"),
		language: opts.Language,
		country:  opts.Country,
		client:   hc,
	}
}

func (g *GNews) Name() string { return "gnews" }

func (g *GNews) Fetch(ctx context.Context, q news.Query) ([]news.RawArticle, error) {
	params := g.params(q.Max)
	params.Set("q", q.Terms)
	if !q.Since.IsZero() {
		params.Set("from", q.Since.UTC().Format(time.RFC3339))
	}
	return g.get(ctx, "search", params)
}

func (g *GNews) TopHeadlines(ctx context.Context, category string, max int) ([]news.RawArticle, error) {
	params := g.params(max)
	params.Set("category", category)
	return g.get(ctx, "top-headlines", params)
}

func (g *GNews) params(max int) url.Values {
	params := url.Values{}
	params.Set("lang", g.language)
	params.Set("country", g.country)
	params.Set("max", strconv.Itoa(max))
	params.Set("apikey", g.apiKey)
	return params
}

func (g *GNews) get(ctx context.Context, op string, params url.Values) ([]news.RawArticle, error) {
	var resp gnewsResponse
	if err := getJSON(ctx, g.client, g.Name(), op, g.baseURL+"/"+op, params, nil, &resp); err != nil {
		return nil, err
	}
	articles := make([]news.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.normalize())
	}
	return articles, nil
}

func (a gnewsArticle) normalize() news.RawArticle {
	r := news.RawArticle{
		Title:       strValue(a.Title),
		Description: strValue(a.Description),
		Content:     strValue(a.Content),
		URL:         strValue(a.URL),
		Image:       strValue(a.Image),
		PublishedAt: strValue(a.PublishedAt),
	}
	if a.Source != nil {
		r.SourceName = strValue(a.Source.Name)
	}
	return r
}
