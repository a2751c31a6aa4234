package news

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNoCategories = errors.New("no categories configured")

// Aggregator builds one AggregationResult per call by fetching,
// summarizing and normalizing every configured category.
type Aggregator struct {
	fetcher     *Fetcher
	summarizer  Summarizer
	perCategory int
	concurrency int
	now         func() time.Time
}

type Option func(*Aggregator)

// WithArticlesPerCategory sets how many records each category contributes.
func WithArticlesPerCategory(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.perCategory = n
		}
	}
}

// WithConcurrency bounds the number of categories fetched at once.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func NewAggregator(f *Fetcher, s Summarizer, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     f,
		summarizer:  s,
		perCategory: 1,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ArticlesPerCategory reports the configured per-category record count.
func (a *Aggregator) ArticlesPerCategory() int {
	return a.perCategory
}

// Aggregate processes categories independently. Every category ends up with
// at least one record; the only errors are an empty category list and a
// cancelled or expired context.
func (a *Aggregator) Aggregate(ctx context.Context, categories []CategorySpec) (*AggregationResult, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	entries := make([]CategoryNews, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, cat := range categories {
		i, cat := i, cat
		g.Go(func() error {
			log.Printf("fetching %s news...", cat.Name)
			entries[i] = CategoryNews{Category: cat, Articles: a.collect(gctx, cat)}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &AggregationResult{Entries: entries, CompletedAt: a.now()}, nil
}

func (a *Aggregator) collect(ctx context.Context, cat CategorySpec) []ArticleRecord {
	raw := a.fetcher.FetchWithFallback(ctx, cat, a.perCategory)
	if len(raw) == 0 {
		return []ArticleRecord{Placeholder(cat)}
	}

	records := make([]ArticleRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, a.normalize(ctx, cat, r))
	}
	return records
}

func (a *Aggregator) normalize(ctx context.Context, cat CategorySpec, r RawArticle) ArticleRecord {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = noTitle
	}
	summary := noSummary
	if text := BestText(r); text != "" {
		summary = a.summarizer.Summarize(ctx, text, title)
	}
	link := WebURL(r.URL)
	if link == "" {
		link = missingURL
	}
	return ArticleRecord{
		Category:    cat.Name,
		Emoji:       cat.Emoji,
		Title:       title,
		Summary:     summary,
		Author:      Author(r),
		URL:         link,
		Image:       WebURL(r.Image),
		PublishDate: NormalizeDate(r.PublishedAt),
	}
}

// WebURL returns raw trimmed when it is an absolute http(s) URL, else "".
func WebURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw
	}
	return ""
}
