package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/IshaanNene/stocknews/internal/pipeline"
	"github.com/IshaanNene/stocknews/internal/types"
)

const previewRunes = 500

var separator = strings.Repeat("=", 80)

// printReport writes the per-item console report.
func printReport(w io.Writer, results []types.ItemResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "\nNo news items were found.")
		return
	}

	fmt.Fprintf(w, "\nFound %d news items:\n", len(results))
	for _, res := range results {
		item := res.Item
		fmt.Fprintf(w, "\nDate: %s\n", item.Date)
		fmt.Fprintf(w, "Title: %s\n", item.Title)
		fmt.Fprintf(w, "Link: %s\n", item.Link)

		if item.Content != "" {
			fmt.Fprintln(w, "\nContent Preview:")
			fmt.Fprintln(w, preview(item.Content))
		} else {
			fmt.Fprintln(w, "\nNo content available")
			if reason := res.FailureReason(); reason != "" {
				fmt.Fprintf(w, "Reason: %s\n", reason)
			}
		}
		fmt.Fprintln(w, "\n"+separator)
	}
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	return pipeline.Truncate(content, previewRunes) + "..."
}
