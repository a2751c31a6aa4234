package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JerryLinyx/newsdigest/news"
	"github.com/mmcdole/gofeed"
)

// RSS treats the category query as an RSS or Atom feed URL.
type RSS struct {
	parser *gofeed.Parser
}

func NewRSS(hc *http.Client) *RSS {
	p := gofeed.NewParser()
	p.Client = hc
	return &RSS{parser: p}
}

func (r *RSS) Name() string { return "rss" }

func (r *RSS) Fetch(ctx context.Context, q news.Query) ([]news.RawArticle, error) {
	feed, err := r.parser.ParseURLWithContext(q.Terms, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &ProviderError{
				Provider:   r.Name(),
				Op:         "parse",
				StatusCode: httpErr.StatusCode,
				Err:        fmt.Errorf("%w: %s", ErrHTTPStatus, httpErr.Status),
			}
		}
		return nil, &ProviderError{Provider: r.Name(), Op: "parse", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	articles := make([]news.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if !q.Since.IsZero() && publishedAt(item).Before(q.Since) {
			continue
		}
		articles = append(articles, normalizeItem(feed, item))
		if q.Max > 0 && len(articles) == q.Max {
			break
		}
	}
	return articles, nil
}

// publishedAt returns the zero time when the item carries no date, which
// excludes it from recency-constrained queries.
func publishedAt(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}

func normalizeItem(feed *gofeed.Feed, item *gofeed.Item) news.RawArticle {
	r := news.RawArticle{
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		Content:     item.Content,
		SourceName:  strings.TrimSpace(feed.Title),
		URL:         strings.TrimSpace(item.Link),
	}
	if t := publishedAt(item); !t.IsZero() {
		r.PublishedAt = t.UTC().Format(time.RFC3339)
	}
	var names []string
	for _, p := range item.Authors {
		if p != nil && p.Name != "" {
			names = append(names, p.Name)
		}
	}
	r.Author = strings.Join(names, ", ")

	switch {
	case item.Image != nil:
		r.Image = item.Image.URL
	default:
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				r.Image = enc.URL
				break
			}
		}
	}
	return r
}
