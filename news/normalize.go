package news

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	unknownAuthor    = "Unknown"
	noTitle          = "No title"
	noSummary        = "No summary available"
	placeholderHint  = "Please try refreshing later."
	placeholderActor = "N/A"
	missingURL       = "#"
)

// NewsAPI cuts content at ~200 chars and appends e.g. "… [+1234 chars]".
var truncationMarker = regexp.MustCompile(`\s*…?\s*\[\+\d+ chars\]\s*$`)

// markupStart matches a '<' that opens a tag or comment.
var markupStart = regexp.MustCompile(`^(?:</?[a-zA-Z][a-zA-Z0-9:-]*(?:\s[^<>]*)?/?>|<!--)`)

// Placeholder is the record substituted when a category has no articles.
func Placeholder(cat CategorySpec) ArticleRecord {
	return ArticleRecord{
		Category:    cat.Name,
		Emoji:       cat.Emoji,
		Title:       fmt.Sprintf("No %s news available", cat.Name),
		Summary:     placeholderHint,
		Author:      placeholderActor,
		URL:         missingURL,
		Image:       "",
		PublishDate: "",
		Placeholder: true,
	}
}

// BestText prefers the article body over its description.
func BestText(a RawArticle) string {
	if text := Sanitize(a.Content); text != "" {
		return text
	}
	return Sanitize(a.Description)
}

// Author prefers the structured source name, then the byline.
func Author(a RawArticle) string {
	if s := strings.TrimSpace(a.SourceName); s != "" {
		return s
	}
	if s := strings.TrimSpace(a.Author); s != "" {
		return s
	}
	return unknownAuthor
}

// Sanitize strips markup and collapses whitespace.
func Sanitize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(escapeStrayLT(text)))
	skip := 0
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.StartTagToken:
			if name, _ := z.TagName(); isInvisible(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isInvisible(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteByte(' ')
			}
		}
	}
	clean := strings.Join(strings.Fields(sb.String()), " ")
	return strings.TrimSpace(truncationMarker.ReplaceAllString(clean, ""))
}

// escapeStrayLT escapes '<' characters that do not start markup, so plain
// text such as "x<y" survives tokenizing.
func escapeStrayLT(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '<' && !markupStart.MatchString(text[i:]) {
			sb.WriteString("&lt;")
			continue
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}

func isInvisible(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}

// NormalizeDate converts provider timestamps to RFC 3339; unparseable or
// empty values become "".
func NormalizeDate(value string) string {
	if t := parseTimeString(value); t != nil {
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}

func parseTimeString(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		time.RFC1123Z,
		time.RFC1123,
		time.RFC850,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"Mon, 2 Jan 2006 15:04:05 -0700",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
