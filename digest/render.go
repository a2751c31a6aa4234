package digest

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/JerryLinyx/newsdigest/news"
)

// telegramLimit is Telegram's maximum message length.
const telegramLimit = 4096

var emailTemplate = template.Must(template.New("email").Parse(`<h2>{{.Heading}}</h2><br>
{{range $i, $a := .Articles}}{{if $i}}<hr>
{{end}}<div class="article">
<h3>{{$a.Emoji}} {{$a.Title}}</h3>
<p><b>Summary:</b> {{$a.Summary}}</p>
{{if $a.Image}}<img src="{{$a.Image}}" alt="news image" width="400"/><br>
{{end}}<p><b>Author:</b> {{$a.Author}}</p>
<p><a href="{{$a.URL}}">Read Full Article</a></p>
</div>
{{end}}`))

// Digest is one aggregation rendered for every delivery channel.
type Digest struct {
	Subject  string
	HTML     string
	Text     string
	Telegram []string
	Result   *news.AggregationResult
}

// Build renders res for email and Telegram.
func Build(res *news.AggregationResult, subject string) (*Digest, error) {
	body, err := RenderHTML(res, subject)
	if err != nil {
		return nil, err
	}
	return &Digest{
		Subject:  subject,
		HTML:     body,
		Text:     RenderText(res, subject),
		Telegram: RenderTelegram(res, subject),
		Result:   res,
	}, nil
}

// RenderHTML produces the email body: one block per article separated by <hr>.
func RenderHTML(res *news.AggregationResult, heading string) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Heading  string
		Articles []news.ArticleRecord
	}{heading, res.Articles()})
	if err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}

// RenderText is the plain-text alternative part of the email.
func RenderText(res *news.AggregationResult, heading string) string {
	var sb strings.Builder
	sb.WriteString(heading)
	sb.WriteString("\n\n")
	for i, a := range res.Articles() {
		if i > 0 {
			sb.WriteString("\n----\n\n")
		}
		fmt.Fprintf(&sb, "%s %s\n%s\nAuthor: %s\n", a.Emoji, a.Title, a.Summary, a.Author)
		if a.URL != "#" {
			fmt.Fprintf(&sb, "%s\n", a.URL)
		}
	}
	return sb.String()
}

// RenderTelegram formats the digest in Telegram's HTML subset, split into
// messages that fit the API limit.
func RenderTelegram(res *news.AggregationResult, heading string) []string {
	var blocks []string
	for _, a := range res.Articles() {
		blocks = append(blocks, telegramBlock(a))
	}

	var messages []string
	current := "<b>" + html.EscapeString(truncateRunes(heading, 256)) + "</b>"
	for _, b := range blocks {
		if len(current)+2+len(b) > telegramLimit {
			messages = append(messages, current)
			current = b
			continue
		}
		current += "\n\n" + b
	}
	return append(messages, current)
}

// telegramBlock renders one article, shortening the summary and then the
// title until the block fits in a single message.
func telegramBlock(a news.ArticleRecord) string {
	title, summary := a.Title, a.Summary
	for {
		b := formatTelegramBlock(a, title, summary)
		if len(b) <= telegramLimit {
			return b
		}
		over := len(b) - telegramLimit
		switch {
		case summary != "":
			summary = shorten(summary, over)
		case title != "":
			title = shorten(title, over)
		default:
			return b[:telegramLimit]
		}
	}
}

func formatTelegramBlock(a news.ArticleRecord, title, summary string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>\n%s\n<i>%s</i>",
		a.Emoji, html.EscapeString(title), html.EscapeString(summary), html.EscapeString(truncateRunes(a.Author, 256)))
	if a.URL != "#" && a.URL != "" && len(a.URL) < 1024 {
		fmt.Fprintf(&sb, "\n<a href=\"%s\">Read Full Article</a>", html.EscapeString(a.URL))
	}
	return sb.String()
}

// shorten drops at least over bytes from s (plus room for "..."), keeping
// whole runes. The result is "" once nothing meaningful is left.
func shorten(s string, over int) string {
	s = strings.TrimSuffix(s, "...")
	keep := len(s) - over - len("...")
	if keep <= 0 {
		return ""
	}
	for keep > 0 && !utf8.RuneStart(s[keep]) {
		keep--
	}
	return s[:keep] + "..."
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
