package news

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// Window describes how far back the primary fetch looks.
type Window struct {
	today bool
	span  time.Duration
}

// Today restricts the primary fetch to the current UTC day.
var Today = Window{today: true}

// NoWindow disables the recency constraint.
var NoWindow = Window{}

// ParseWindow accepts "today", "none" (or empty) and Go durations such as "24h".
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return Today, nil
	case "", "none":
		return NoWindow, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return NoWindow, fmt.Errorf("invalid recency window %q: %w", s, err)
	}
	if d <= 0 {
		return NoWindow, fmt.Errorf("invalid recency window %q: must be positive", s)
	}
	return Window{span: d}, nil
}

// Start returns the earliest publish time for the primary attempt, or the
// zero time when the window is disabled.
func (w Window) Start(now time.Time) time.Time {
	switch {
	case w.today:
		now = now.UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case w.span > 0:
		return now.Add(-w.span)
	default:
		return time.Time{}
	}
}

// Enabled reports whether the window constrains anything.
func (w Window) Enabled() bool {
	return w.today || w.span > 0
}

// Fetcher wraps a Provider with the single-retry broadened-query policy.
type Fetcher struct {
	provider Provider
	window   Window
	now      func() time.Time
}

func NewFetcher(p Provider, w Window) *Fetcher {
	return &Fetcher{provider: p, window: w, now: time.Now}
}

// FetchWithFallback asks for recent articles first and, if that yields
// nothing, retries once without the recency constraint. Provider errors are
// logged and count as an empty result.
func (f *Fetcher) FetchWithFallback(ctx context.Context, cat CategorySpec, max int) []RawArticle {
	if max < 1 {
		max = 1
	}
	q := Query{Terms: cat.Query, Max: max, Since: f.window.Start(f.now())}

	articles := f.fetch(ctx, cat, q)
	if len(articles) > 0 || !f.window.Enabled() {
		return articles
	}
	if ctx.Err() != nil {
		return nil
	}

	log.Printf("no recent %s news from %s, retrying without recency window", cat.Name, f.provider.Name())
	q.Since = time.Time{}
	return f.fetch(ctx, cat, q)
}

func (f *Fetcher) fetch(ctx context.Context, cat CategorySpec, q Query) []RawArticle {
	articles, err := f.provider.Fetch(ctx, q)
	if err != nil {
		log.Printf("error fetching %s news: %v", cat.Name, err)
		return nil
	}
	if len(articles) > q.Max {
		articles = articles[:q.Max]
	}
	return articles
}
