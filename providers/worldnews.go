package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JerryLinyx/newsdigest/news"
)

const WorldNewsBaseURL = "https://api.worldnewsapi.com"

// WorldNews talks to worldnewsapi.com.
type WorldNews struct {
	apiKey   string
	baseURL  string
	language string
	country  string
	client   *http.Client
}

type worldNewsSearchResponse struct {
	Offset    int                `json:"offset"`
	Number    int                `json:"number"`
	Available int                `json:"available"`
	News      []worldNewsArticle `json:"news"`
}

type worldNewsArticle struct {
	ID          int64    `json:"id"`
	Title       *string  `json:"title"`
	Text        *string  `json:"text"`
	Summary     *string  `json:"summary"`
	URL         *string  `json:"url"`
	Image       *string  `json:"image"`
	PublishDate *string  `json:"publish_date"`
	Author      *string  `json:"author"`
	Authors     []string `json:"authors"`
	Language    *string  `json:"language"`
}

func NewWorldNews(opts Options, hc *http.Client) *WorldNews {
	base := opts.BaseURL
	if base == "" {
		base = WorldNewsBaseURL
	}
	return &WorldNews{
		apiKey:   opts.APIKey,
		baseURL:  strings.TrimRight(base, "/"),
		language: opts.Language,
		country:  opts.Country,
		client:   hc,
	}
}

func (w *WorldNews) Name() string { return "worldnews" }

func (w *WorldNews) Fetch(ctx context.Context, q news.Query) ([]news.RawArticle, error) {
	params := url.Values{}
	params.Set("text", q.Terms)
	params.Set("language", w.language)
	params.Set("source-country", w.country)
	params.Set("number", strconv.Itoa(q.Max))
	params.Set("sort", "publish-time")
	params.Set("sort-direction", "DESC")
	if !q.Since.IsZero() {
		params.Set("earliest-publish-date", q.Since.UTC().Format("2006-01-02 15:04:05"))
	}

	header := http.Header{}
	header.Set("x-api-key", w.apiKey)

	var resp worldNewsSearchResponse
	if err := getJSON(ctx, w.client, w.Name(), "search-news", w.baseURL+"/search-news", params, header, &resp); err != nil {
		return nil, err
	}
	articles := make([]news.RawArticle, 0, len(resp.News))
	for _, a := range resp.News {
		articles = append(articles, a.normalize())
	}
	return articles, nil
}

func (a worldNewsArticle) normalize() news.RawArticle {
	author := strValue(a.Author)
	if author == "" && len(a.Authors) > 0 {
		author = strings.Join(a.Authors, ", ")
	}
	return news.RawArticle{
		Title:       strValue(a.Title),
		Description: strValue(a.Summary),
		Content:     strValue(a.Text),
		Author:      author,
		URL:         strValue(a.URL),
		Image:       strValue(a.Image),
		PublishedAt: strValue(a.PublishDate),
	}
}
