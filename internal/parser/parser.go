package parser

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/stocknews/internal/config"
)

// Document is a parsed HTML page shared by every extraction strategy.
type Document struct {
	URL  *url.URL
	Root *html.Node

	raw []byte
	gq  *goquery.Document
}

// NewDocument parses body leniently. Malformed markup never fails; at
// worst the document is empty.
func NewDocument(body []byte, pageURL string) *Document {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	u, _ := url.Parse(pageURL)
	return &Document{URL: u, Root: root, raw: body}
}

// Query returns the goquery view of the document.
func (d *Document) Query() *goquery.Document {
	if d.gq == nil {
		d.gq = goquery.NewDocumentFromNode(d.Root)
	}
	return d.gq
}

// Strategy extracts article text from a document. The boolean reports
// whether the strategy matched with non-empty text.
type Strategy interface {
	Name() string
	Extract(doc *Document) (string, bool)
}

// Extractor runs strategies in priority order and returns the first match.
// When nothing matches, every paragraph on the page is used.
type Extractor struct {
	strategies []Strategy
	fallback   Strategy
	logger     *slog.Logger
}

// NewExtractor creates an Extractor over the given strategies.
func NewExtractor(logger *slog.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{
		strategies: strategies,
		fallback:   ParagraphsStrategy{},
		logger:     logger.With("component", "extractor"),
	}
}

// NewExtractorFromConfig builds the strategy chain: configured XPath
// expressions, the container selectors, then JSON-LD and readability when
// enabled.
func NewExtractorFromConfig(cfg *config.ExtractConfig, logger *slog.Logger) (*Extractor, error) {
	var strategies []Strategy

	for _, expr := range cfg.XPath {
		s, err := NewXPathStrategy(expr)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}

	containers := cfg.Containers
	if len(containers) == 0 {
		containers = config.DefaultContainers()
	}
	for _, sel := range containers {
		strategies = append(strategies, NewContainerStrategy(sel.Tag, sel.Class))
	}

	if cfg.JSONLD {
		strategies = append(strategies, JSONLDStrategy{})
	}
	if cfg.Readability {
		strategies = append(strategies, ReadabilityStrategy{})
	}

	return NewExtractor(logger, strategies...), nil
}

// Extract returns the article text and the name of the strategy that
// produced it. An empty string means the page has no paragraphs.
func (e *Extractor) Extract(doc *Document) (string, string) {
	for _, s := range e.strategies {
		if text, ok := s.Extract(doc); ok {
			e.logger.Debug("strategy matched", "strategy", s.Name(), "chars", len(text))
			return text, s.Name()
		}
	}
	text, _ := e.fallback.Extract(doc)
	return text, e.fallback.Name()
}

// ExtractHTML parses body and extracts its article text.
func (e *Extractor) ExtractHTML(body []byte, pageURL string) string {
	text, _ := e.Extract(NewDocument(body, pageURL))
	return text
}

// joinParagraphs trims each paragraph and joins them with newlines. Empty
// paragraphs keep their slot; the result is trimmed as a whole.
func joinParagraphs(paragraphs []string) string {
	for i, p := range paragraphs {
		paragraphs[i] = strings.TrimSpace(p)
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}
