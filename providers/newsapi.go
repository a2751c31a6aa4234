package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JerryLinyx/newsdigest/news"
)

const NewsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPI talks to newsapi.org.
type NewsAPI struct {
	apiKey   string
	baseURL  string
	language string
	country  string
	client   *http.Client
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source *struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
	Content     *string `json:"content"`
}

func NewNewsAPI(opts Options, hc *http.Client) *NewsAPI {
	base := opts.BaseURL
	if base == "" {
		base = NewsAPIBaseURL
	}
	return &NewsAPI{
		apiKey:   opts.APIKey,
		baseURL:  strings.TrimRight(base, "/"),
		language: opts.Language,
		country:  opts.Country,
		client:   hc,
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

func (n *NewsAPI) Fetch(ctx context.Context, q news.Query) ([]news.RawArticle, error) {
	params := url.Values{}
	params.Set("q", q.Terms)
	params.Set("language", n.language)
	params.Set("pageSize", strconv.Itoa(q.Max))
	params.Set("sortBy", "publishedAt")
	params.Set("apiKey", n.apiKey)
	if !q.Since.IsZero() {
		params.Set("from", q.Since.UTC().Format("2006-01-02"))
	}
	return n.get(ctx, "everything", params)
}

func (n *NewsAPI) TopHeadlines(ctx context.Context, category string, max int) ([]news.RawArticle, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("country", n.country)
	params.Set("pageSize", strconv.Itoa(max))
	params.Set("apiKey", n.apiKey)
	return n.get(ctx, "top-headlines", params)
}

func (n *NewsAPI) get(ctx context.Context, op string, params url.Values) ([]news.RawArticle, error) {
	var resp newsAPIResponse
	if err := getJSON(ctx, n.client, n.Name(), op, n.baseURL+"/"+op, params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, &ProviderError{
			Provider: n.Name(),
			Op:       op,
			Err:      fmt.Errorf("%w: %s: %s", ErrUpstream, resp.Code, resp.Message),
		}
	}

	articles := make([]news.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.normalize())
	}
	return articles, nil
}

func (a newsAPIArticle) normalize() news.RawArticle {
	r := news.RawArticle{
		Title:       strValue(a.Title),
		Description: strValue(a.Description),
		Content:     strValue(a.Content),
		Author:      strValue(a.Author),
		URL:         strValue(a.URL),
		Image:       strValue(a.URLToImage),
		PublishedAt: strValue(a.PublishedAt),
	}
	if a.Source != nil {
		r.SourceName = strValue(a.Source.Name)
	}
	// NewsAPI marks deleted articles with this title.
	if r.Title == "[Removed]" {
		r.Title = ""
	}
	return r
}
