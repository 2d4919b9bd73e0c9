package parser

import (
	"github.com/PuerkitoBio/goquery"
)

// ContainerStrategy collects the paragraphs inside every element matching
// tag.class.
type ContainerStrategy struct {
	Tag   string
	Class string

	selector string
}

// NewContainerStrategy creates a strategy for elements <tag class="class">.
func NewContainerStrategy(tag, class string) *ContainerStrategy {
	return &ContainerStrategy{
		Tag:      tag,
		Class:    class,
		selector: tag + "." + class,
	}
}

// Name implements Strategy.
func (s *ContainerStrategy) Name() string {
	return "container:" + s.selector
}

// Extract implements Strategy.
func (s *ContainerStrategy) Extract(doc *Document) (string, bool) {
	containers := doc.Query().Find(s.selector)
	if containers.Length() == 0 {
		return "", false
	}
	text := joinParagraphs(selectionTexts(containers.Find("p")))
	return text, text != ""
}

// ParagraphsStrategy uses every <p> in the document. It is the fallback
// when no other strategy matches.
type ParagraphsStrategy struct{}

// Name implements Strategy.
func (ParagraphsStrategy) Name() string { return "paragraphs" }

// Extract implements Strategy.
func (ParagraphsStrategy) Extract(doc *Document) (string, bool) {
	text := joinParagraphs(selectionTexts(doc.Query().Find("p")))
	return text, text != ""
}

func selectionTexts(sel *goquery.Selection) []string {
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, p *goquery.Selection) {
		texts = append(texts, p.Text())
	})
	return texts
}
