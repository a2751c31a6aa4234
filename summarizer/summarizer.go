package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL           = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"
	DefaultMaxInputChars = 800
	DefaultFallbackChars = 150
	DefaultMinLength     = 30
	DefaultMaxLength     = 100
)

var (
	ErrRequest      = errors.New("summarization request failed")
	ErrStatus       = errors.New("summarization endpoint returned non-2xx status")
	ErrMalformed    = errors.New("malformed summarization response")
	ErrEmptySummary = errors.New("summarization response has no summary_text")
)

type Options struct {
	URL           string
	Token         string
	Timeout       time.Duration
	MaxInputChars int
	FallbackChars int
	MinLength     int
	MaxLength     int
}

// Client calls a hosted summarization model. Summarize never fails.
type Client struct {
	url           string
	token         string
	maxInputChars int
	fallbackChars int
	minLength     int
	maxLength     int
	httpClient    *http.Client
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	MaxLength int `json:"max_length"`
	MinLength int `json:"min_length"`
}

type summaryItem struct {
	SummaryText *string `json:"summary_text"`
}

func New(opts Options) *Client {
	c := &Client{
		url:           opts.URL,
		token:         opts.Token,
		maxInputChars: opts.MaxInputChars,
		fallbackChars: opts.FallbackChars,
		minLength:     opts.MinLength,
		maxLength:     opts.MaxLength,
	}
	if c.url == "" {
		c.url = DefaultURL
	}
	if c.maxInputChars <= 0 {
		c.maxInputChars = DefaultMaxInputChars
	}
	if c.fallbackChars <= 0 {
		c.fallbackChars = DefaultFallbackChars
	}
	if c.minLength <= 0 {
		c.minLength = DefaultMinLength
	}
	if c.maxLength <= 0 {
		c.maxLength = DefaultMaxLength
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c.httpClient = &http.Client{Timeout: timeout}
	return c
}

// Summarize returns the model's summary or, on any request, status or
// decoding failure, the local truncation fallback.
func (c *Client) Summarize(ctx context.Context, text, title string) string {
	summary, err := c.summarize(ctx, text, title)
	switch {
	case err == nil:
		return summary
	case errors.Is(err, ErrRequest), errors.Is(err, ErrStatus),
		errors.Is(err, ErrMalformed), errors.Is(err, ErrEmptySummary):
		log.Printf("summarizing %q: %v", title, err)
		return fallback(text, c.fallbackChars)
	default:
		panic(fmt.Sprintf("summarizer: unclassified error: %v", err))
	}
}

func (c *Client) summarize(ctx context.Context, text, title string) (string, error) {
	body, err := json.Marshal(request{
		Inputs:     title + ". " + prefix(text, c.maxInputChars),
		Parameters: parameters{MaxLength: c.maxLength, MinLength: c.minLength},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encoding payload: %v", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d: %s", ErrStatus, resp.StatusCode, extractEndpointError(data))
	}

	var items []summaryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: empty list", ErrMalformed)
	}
	if items[0].SummaryText == nil || strings.TrimSpace(*items[0].SummaryText) == "" {
		return "", ErrEmptySummary
	}
	return strings.TrimSpace(*items[0].SummaryText), nil
}

func extractEndpointError(body []byte) string {
	var errResp map[string]interface{}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg, ok := errResp["error"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := errResp["message"].(string); ok && msg != "" {
			return msg
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	return trimmed
}

// Fallback is the deterministic local summary: the first 150 characters of
// text followed by "...".
func Fallback(text string) string {
	return fallback(text, DefaultFallbackChars)
}

func fallback(text string, n int) string {
	return prefix(text, n) + "..."
}

func prefix(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// Truncating is used when no hosted model is configured.
type Truncating struct{}

func (Truncating) Summarize(_ context.Context, text, _ string) string {
	return Fallback(text)
}
