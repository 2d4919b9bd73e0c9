package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestPipelineBasic(t *testing.T) {
	p := New(testLogger)
	p.Use(TrimMiddleware{})

	item := &types.NewsItem{
		Date:    " 07/01/2024 ",
		Title:   "  Hello World  ",
		Link:    "https://example.com/a\n",
		Content: "\n body \n",
	}
	if err := p.Process(item); err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	want := types.NewsItem{Date: "07/01/2024", Title: "Hello World", Link: "https://example.com/a", Content: "body"}
	if *item != want {
		t.Errorf("got %+v, want %+v", *item, want)
	}
}

func TestTitleSanitizeMiddleware(t *testing.T) {
	m := NewTitleSanitizeMiddleware()
	item := &types.NewsItem{
		Title:   `<b>Eternal</b> Q3 &amp; outlook   - Example`,
		Content: "keep <b>this</b>\nas is",
	}
	if err := m.Process(item); err != nil {
		t.Fatal(err)
	}
	if item.Title != "Eternal Q3 & outlook - Example" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Content != "keep <b>this</b>\nas is" {
		t.Errorf("content modified: %q", item.Content)
	}
}

func TestContentLimit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"under", "short", 10, "short"},
		{"exact", "12345", 5, "12345"},
		{"over", "1234567", 5, "12345"},
		{"multibyte", "₹₹₹₹", 2, "₹₹"},
		{"disabled", "anything", 0, "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &types.NewsItem{Content: tt.in}
			(&ContentLimitMiddleware{MaxChars: tt.max}).Process(item)
			if item.Content != tt.want {
				t.Errorf("got %q, want %q", item.Content, tt.want)
			}
		})
	}
}

type failingMiddleware struct{}

func (failingMiddleware) Name() string { return "boom" }
func (failingMiddleware) Process(*types.NewsItem) error { return errors.New("kaput") }

func TestPipelineErrorCarriesStage(t *testing.T) {
	p := New(testLogger)
	p.Use(TrimMiddleware{})
	p.Use(failingMiddleware{})

	err := p.Process(&types.NewsItem{Link: "https://example.com/x"})
	var pe *types.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if pe.Stage != "boom" || pe.Link != "https://example.com/x" {
		t.Errorf("unexpected error fields: %+v", pe)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Pipeline
	if n := FromConfig(&cfg, testLogger).Len(); n != 2 {
		t.Errorf("default chain length = %d, want 2", n)
	}
	cfg.MaxContentChars = 100
	cfg.SanitizeTitles = false
	if n := FromConfig(&cfg, testLogger).Len(); n != 2 {
		t.Errorf("chain length = %d, want 2", n)
	}
}
