package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JerryLinyx/newsdigest/news"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

const (
	newsCacheKey           = "news"
	topNewsLimit           = 10
	defaultTopCat          = "general"
	defaultRefreshInterval = time.Minute
)

// topNewsCategories maps the dashboard's filter values to provider tokens.
var topNewsCategories = map[string]string{
	"all":        "general",
	"technology": "technology",
	"business":   "business",
	"sports":     "sports",
	"health":     "health",
	"science":    "science",
}

type NewsAggregator interface {
	Aggregate(ctx context.Context, categories []news.CategorySpec) (*news.AggregationResult, error)
	ArticlesPerCategory() int
}

// EnvelopeCache stores serialized /api/news responses.
type EnvelopeCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type NewsController struct {
	aggregator NewsAggregator
	categories []news.CategorySpec
	provider   news.Provider
	cache      EnvelopeCache

	// concurrent aggregations share one provider fan-out
	inflight singleflight.Group

	mu              sync.Mutex
	lastRefresh     time.Time
	refreshInterval time.Duration
	now             func() time.Time
}

// NewNewsController accepts a nil cache.
func NewNewsController(agg NewsAggregator, categories []news.CategorySpec, provider news.Provider, cache EnvelopeCache) *NewsController {
	return &NewsController{
		aggregator:      agg,
		categories:      categories,
		provider:        provider,
		cache:           cache,
		refreshInterval: defaultRefreshInterval,
		now:             time.Now,
	}
}

// SetRefreshInterval sets how often ?refresh=true may bypass the cache.
func (n *NewsController) SetRefreshInterval(d time.Duration) {
	if d > 0 {
		n.refreshInterval = d
	}
}

// allowRefresh grants at most one forced refresh per interval across all clients.
func (n *NewsController) allowRefresh() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if !n.lastRefresh.IsZero() && now.Sub(n.lastRefresh) < n.refreshInterval {
		return false
	}
	n.lastRefresh = now
	return true
}

type newsEnvelope struct {
	Success        bool                            `json:"success"`
	News           []news.ArticleRecord            `json:"news,omitempty"`
	NewsByCategory map[string][]news.ArticleRecord `json:"news_by_category,omitempty"`
	Categories     []string                        `json:"categories,omitempty"`
	LastUpdated    string                          `json:"last_updated"`
}

func buildEnvelope(res *news.AggregationResult, perCategory int) newsEnvelope {
	env := newsEnvelope{
		Success:     true,
		LastUpdated: res.CompletedAt.UTC().Format(time.RFC3339),
	}
	if perCategory > 1 {
		env.NewsByCategory = res.ByCategory()
		env.Categories = res.CategoryNames()
	} else {
		env.News = res.Articles()
	}
	return env
}

// GetNews serves the aggregated envelope. ?refresh=true bypasses the cache,
// at most once per refresh interval; other refresh requests get the cached copy.
func (n *NewsController) GetNews(c *gin.Context) {
	ctx := c.Request.Context()
	refresh := c.Query("refresh") == "true" && n.cache != nil && n.allowRefresh()

	if n.cache != nil && !refresh {
		data, ok, err := n.cache.Get(ctx, newsCacheKey)
		if err != nil {
			log.Printf("news cache read failed: %v", err)
		}
		if ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			return
		}
	}

	v, err, _ := n.inflight.Do(newsCacheKey, func() (interface{}, error) {
		return n.aggregate(context.WithoutCancel(ctx))
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", v.([]byte))
}

func (n *NewsController) aggregate(ctx context.Context) ([]byte, error) {
	res, err := n.aggregator.Aggregate(ctx, n.categories)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(buildEnvelope(res, n.aggregator.ArticlesPerCategory()))
	if err != nil {
		return nil, err
	}
	if n.cache != nil {
		if err := n.cache.Set(ctx, newsCacheKey, data); err != nil {
			log.Printf("news cache write failed: %v", err)
		}
	}
	return data, nil
}

type topArticle struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	PublishDate string `json:"publish_date"`
	Category    string `json:"category"`
}

// GetTopNews returns provider headlines for one of the fixed filter values.
// Provider failures produce an empty list, not an error.
func (n *NewsController) GetTopNews(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.DefaultQuery("category", "all")))
	token, ok := topNewsCategories[category]
	if !ok {
		token = defaultTopCat
	}

	raw, err := n.headlines(c.Request.Context(), token)
	if err != nil {
		log.Printf("top news for %q failed: %v", token, err)
		raw = nil
	}

	articles := make([]topArticle, 0, len(raw))
	for _, a := range raw {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		url := news.WebURL(a.URL)
		if url == "" {
			url = "#"
		}
		articles = append(articles, topArticle{
			Title:       title,
			Author:      news.Author(a),
			URL:         url,
			PublishDate: news.NormalizeDate(a.PublishedAt),
			Category:    token,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"articles": articles,
		"category": category,
	})
}

func (n *NewsController) headlines(ctx context.Context, token string) ([]news.RawArticle, error) {
	if n.provider == nil {
		return nil, nil
	}
	if hp, ok := n.provider.(news.HeadlineProvider); ok {
		return hp.TopHeadlines(ctx, token, topNewsLimit)
	}
	return n.provider.Fetch(ctx, news.Query{Terms: token, Max: topNewsLimit})
}

// Dashboard renders the single-page UI; the page loads data from /api/news.
func (n *NewsController) Dashboard(title string) gin.HandlerFunc {
	names := make([]string, 0, len(n.categories))
	for _, cat := range n.categories {
		names = append(names, cat.Name)
	}
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title":      title,
			"categories": names,
		})
	}
}
