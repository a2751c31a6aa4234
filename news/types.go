package news

import (
	"context"
	"time"
)

// CategorySpec is a configured news bucket. It drives both the provider
// query and the labels of the records produced for it.
type CategorySpec struct {
	Name  string `mapstructure:"name" json:"name"`
	Query string `mapstructure:"query" json:"query"`
	Emoji string `mapstructure:"emoji" json:"emoji"`
}

// Query is a single provider request. A zero Since means no recency constraint.
type Query struct {
	Terms string
	Max   int
	Since time.Time
}

// RawArticle is the provider-neutral shape every provider normalizes into.
// Empty strings mean the provider did not supply the field.
type RawArticle struct {
	Title       string
	Description string
	Content     string
	SourceName  string
	Author      string
	URL         string
	Image       string
	PublishedAt string
}

// ArticleRecord is the normalized article handed to the presentation layer.
type ArticleRecord struct {
	Category    string `json:"category"`
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishDate string `json:"publish_date"`
	Placeholder bool   `json:"-"`
}

// CategoryNews holds the records produced for one category.
type CategoryNews struct {
	Category CategorySpec
	Articles []ArticleRecord
}

// AggregationResult is the output of one aggregation run, in configured
// category order.
type AggregationResult struct {
	Entries     []CategoryNews
	CompletedAt time.Time
}

// Articles flattens the result keeping category order.
func (r *AggregationResult) Articles() []ArticleRecord {
	out := make([]ArticleRecord, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.Articles...)
	}
	return out
}

// ByCategory keys the records by category name.
func (r *AggregationResult) ByCategory() map[string][]ArticleRecord {
	out := make(map[string][]ArticleRecord, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Category.Name] = e.Articles
	}
	return out
}

// CategoryNames returns the category names in configured order.
func (r *AggregationResult) CategoryNames() []string {
	names := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		names = append(names, e.Category.Name)
	}
	return names
}

// Provider fetches raw articles from a news API.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]RawArticle, error)
}

// HeadlineProvider is implemented by providers that expose a
// category-based top headlines endpoint.
type HeadlineProvider interface {
	TopHeadlines(ctx context.Context, category string, max int) ([]RawArticle, error)
}

// Summarizer never fails: implementations degrade to a local fallback.
type Summarizer interface {
	Summarize(ctx context.Context, text, title string) string
}
