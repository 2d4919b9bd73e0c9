package parser

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// XPathStrategy collects the text of every node matched by an XPath
// expression. Element matches contribute their inner text, so an
// expression like //div[@id='story']//p behaves like a container rule.
type XPathStrategy struct {
	expr     string
	compiled *xpath.Expr
}

// NewXPathStrategy compiles expr.
func NewXPathStrategy(expr string) (*XPathStrategy, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return &XPathStrategy{expr: expr, compiled: compiled}, nil
}

// Name implements Strategy.
func (s *XPathStrategy) Name() string {
	return "xpath:" + s.expr
}

// Extract implements Strategy.
func (s *XPathStrategy) Extract(doc *Document) (string, bool) {
	nodes := htmlquery.QuerySelectorAll(doc.Root, s.compiled)
	if len(nodes) == 0 {
		return "", false
	}
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, htmlquery.InnerText(n))
	}
	text := joinParagraphs(texts)
	return text, text != ""
}
