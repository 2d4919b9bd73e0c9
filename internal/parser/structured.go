package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// articleTypes are the schema.org types whose articleBody is used.
var articleTypes = map[string]bool{
	"NewsArticle":          true,
	"Article":              true,
	"ReportageNewsArticle": true,
	"AnalysisNewsArticle":  true,
	"BlogPosting":          true,
}

// JSONLDStrategy reads the articleBody of a schema.org article from the
// page's <script type="application/ld+json"> blocks.
type JSONLDStrategy struct{}

func (JSONLDStrategy) Name() string { return "json-ld" }

func (JSONLDStrategy) Extract(doc *Document) (string, bool) {
	var body string
	doc.Query().Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, obj := range parseJSONLD(sel.Text()) {
			if text := articleBody(obj); text != "" {
				body = text
				return false
			}
		}
		return true
	})
	return body, body != ""
}

// parseJSONLD accepts a single object, an array of objects, or an object
// with an @graph array.
func parseJSONLD(raw string) []map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if graph, ok := obj["@graph"].([]any); ok {
			return objects(graph)
		}
		return []map[string]any{obj}
	}

	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return objects(arr)
	}
	return nil
}

func objects(vals []any) []map[string]any {
	out := make([]map[string]any, 0, len(vals))
	for _, v := range vals {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func articleBody(obj map[string]any) string {
	if !isArticle(obj["@type"]) {
		return ""
	}
	body, _ := obj["articleBody"].(string)
	if body == "" {
		return ""
	}
	return joinParagraphs(strings.Split(body, "\n"))
}

func isArticle(t any) bool {
	switch v := t.(type) {
	case string:
		return articleTypes[v]
	case []any:
		for _, x := range v {
			if s, ok := x.(string); ok && articleTypes[s] {
				return true
			}
		}
	}
	return false
}
