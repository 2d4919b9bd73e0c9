package pipeline

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/IshaanNene/stocknews/internal/types"
)

// TrimMiddleware trims surrounding whitespace from every field.
type TrimMiddleware struct{}

func (TrimMiddleware) Name() string { return "trim" }

func (TrimMiddleware) Process(item *types.NewsItem) error {
	item.Date = strings.TrimSpace(item.Date)
	item.Title = strings.TrimSpace(item.Title)
	item.Link = strings.TrimSpace(item.Link)
	item.Content = strings.TrimSpace(item.Content)
	return nil
}

// TitleSanitizeMiddleware strips markup and entities from titles, which
// feeds sometimes deliver escaped. Content is left alone so its paragraph
// breaks survive.
type TitleSanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewTitleSanitizeMiddleware() *TitleSanitizeMiddleware {
	return &TitleSanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *TitleSanitizeMiddleware) Name() string { return "title_sanitize" }

func (m *TitleSanitizeMiddleware) Process(item *types.NewsItem) error {
	if item.Title == "" {
		return nil
	}
	cleaned := m.stripRe.ReplaceAllString(item.Title, "")
	cleaned = html.UnescapeString(cleaned)
	item.Title = strings.Join(strings.Fields(cleaned), " ")
	return nil
}

// ContentLimitMiddleware caps content at MaxChars runes.
type ContentLimitMiddleware struct {
	MaxChars int
}

func (m *ContentLimitMiddleware) Name() string { return "content_limit" }

func (m *ContentLimitMiddleware) Process(item *types.NewsItem) error {
	item.Content = Truncate(item.Content, m.MaxChars)
	return nil
}

// Truncate returns at most n runes of s. n <= 0 returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
