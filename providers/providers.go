package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JerryLinyx/newsdigest/news"
)

var (
	ErrHTTPStatus        = errors.New("unexpected HTTP status")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUpstream          = errors.New("provider reported an error")
	ErrUnknownProvider   = errors.New("unknown news provider")
)

// maxBodySize bounds how much of a provider response is read.
const maxBodySize = 2 << 20

// ProviderError is returned for every network, HTTP or decoding failure.
type ProviderError struct {
	Provider   string
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

type Options struct {
	Kind     string
	APIKey   string
	BaseURL  string
	Language string
	Country  string
	Timeout  time.Duration
}

// New builds the provider named by opts.Kind.
func New(opts Options) (news.Provider, error) {
	hc := &http.Client{Timeout: opts.Timeout}
	if hc.Timeout <= 0 {
		hc.Timeout = 10 * time.Second
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Country == "" {
		opts.Country = "us"
	}

	switch strings.ToLower(opts.Kind) {
	case "", "newsapi":
		return NewNewsAPI(opts, hc), nil
	case "gnews":
		return NewGNews(opts, hc), nil
	case "worldnews", "worldnewsapi":
		return NewWorldNews(opts, hc), nil
	case "rss":
		return NewRSS(hc), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: newsapi, gnews, worldnews, rss)", ErrUnknownProvider, opts.Kind)
	}
}

// getJSON performs a GET and decodes a JSON body into out.
func getJSON(ctx context.Context, hc *http.Client, provider, op, endpoint string, params url.Values, header http.Header, out interface{}) error {
	u := endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &ProviderError{Provider: provider, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &ProviderError{Provider: provider, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &ProviderError{Provider: provider, Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{
			Provider:   provider,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrHTTPStatus, extractProviderError(data)),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ProviderError{Provider: provider, Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return nil
}

func extractProviderError(body []byte) string {
	var errResp map[string]interface{}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg, ok := errResp["message"].(string); ok && msg != "" {
			return msg
		}
		if errs, ok := errResp["errors"].([]interface{}); ok && len(errs) > 0 {
			if msg, ok := errs[0].(string); ok {
				return msg
			}
		}
		if msg, ok := errResp["error"].(string); ok && msg != "" {
			return msg
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	if trimmed == "" {
		return "empty body"
	}
	return trimmed
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
