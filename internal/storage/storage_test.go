package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var sampleItems = []types.NewsItem{
	{
		Date:    "07/01/2024",
		Title:   "Eternal Q3 <results> & outlook",
		Link:    "https://news.example.com/a?x=1&y=2",
		Content: "Revenue grew 12%.\nMargins improved.",
	},
	{
		Date:    "10/01/2024",
		Title:   "Zomato → Eternal: ₹ rally",
		Link:    "https://news.example.com/b",
		Content: "",
	},
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestJSONStorageFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	s := NewJSONStorage(path, testLogger)

	if err := s.Store(context.Background(), sampleItems[:1]); err != nil {
		t.Fatalf("store: %v", err)
	}

	want := `[
    {
        "date": "07/01/2024",
        "title": "Eternal Q3 <results> & outlook",
        "link": "https://news.example.com/a?x=1&y=2",
        "content": "Revenue grew 12%.\nMargins improved."
    }
]
`
	if diff := cmp.Diff(want, readFile(t, path)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONStorageKeepsUnicode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	if err := NewJSONStorage(path, testLogger).Store(context.Background(), sampleItems); err != nil {
		t.Fatal(err)
	}
	out := readFile(t, path)
	if !strings.Contains(out, "Zomato → Eternal: ₹ rally") {
		t.Errorf("non-ASCII text was escaped:\n%s", out)
	}
}

func TestJSONStorageEmpty(t *testing.T) {
	for _, items := range [][]types.NewsItem{nil, {}} {
		path := filepath.Join(t.TempDir(), "news.json")
		if err := NewJSONStorage(path, testLogger).Store(context.Background(), items); err != nil {
			t.Fatal(err)
		}
		if got := readFile(t, path); got != "[]\n" {
			t.Errorf("got %q, want []", got)
		}
	}
}

func TestJSONStorageDeterministic(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
	ctx := context.Background()
	if err := NewJSONStorage(a, testLogger).Store(ctx, sampleItems); err != nil {
		t.Fatal(err)
	}
	if err := NewJSONStorage(b, testLogger).Store(ctx, sampleItems); err != nil {
		t.Fatal(err)
	}
	if readFile(t, a) != readFile(t, b) {
		t.Error("identical input produced different files")
	}
}

func TestJSONStorageOverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")
	if err := os.WriteFile(path, []byte("old contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewJSONStorage(path, testLogger).Store(context.Background(), sampleItems); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(readFile(t, path), "old contents") {
		t.Error("file was not overwritten")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("encode failed")
	err := WriteFileAtomic(path, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected encode error, got %v", err)
	}
	if got := readFile(t, path); got != "previous" {
		t.Errorf("previous output corrupted: %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %d entries", len(entries))
	}
}

func TestStoreCancelledContextWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewJSONStorage(path, testLogger).Store(ctx, sampleItems)
	var se *types.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("output file should not exist")
	}
}

func TestJSONLStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.jsonl")
	if err := NewJSONLStorage(path, testLogger).Store(context.Background(), sampleItems); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], `{"date":"07/01/2024","title":"Eternal Q3 <results> & outlook"`) {
		t.Errorf("unexpected first line %s", lines[0])
	}
}

func TestCSVStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.csv")
	if err := NewCSVStorage(path, testLogger).Store(context.Background(), sampleItems); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"date", "title", "link", "content"},
		{"07/01/2024", "Eternal Q3 <results> & outlook", "https://news.example.com/a?x=1&y=2", "Revenue grew 12%.\nMargins improved."},
		{"10/01/2024", "Zomato → Eternal: ₹ rally", "https://news.example.com/b", ""},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestFromConfigMulti(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig().Storage
	cfg.Type = "json,csv"
	cfg.OutputPath = filepath.Join(dir, "news.json")

	s, err := FromConfig(context.Background(), &cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Name() != "multi" {
		t.Fatalf("expected multi storage, got %s", s.Name())
	}
	if err := s.Store(context.Background(), sampleItems); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"news.json", "news.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestFromConfigFirstBackendGetsOwnExtension(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig().Storage
	cfg.Type = "csv,json"
	cfg.OutputPath = filepath.Join(dir, "news.json")

	s, err := FromConfig(context.Background(), &cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Store(context.Background(), sampleItems); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "news.json"))
	if err != nil {
		t.Fatal(err)
	}
	var items []types.NewsItem
	if err := json.Unmarshal(data, &items); err != nil {
		t.Errorf("news.json is not JSON: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "news.csv")); err != nil {
		t.Errorf("missing news.csv: %v", err)
	}
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		path  string
		kind  string
		force bool
		want  string
	}{
		{"out/news.json", "json", false, "out/news.json"},
		{"out/news.json", "csv", false, "out/news.csv"},
		{"out/news.csv", "jsonl", false, "out/news.jsonl"},
		{"out/news", "csv", false, "out/news.csv"},
		{"out/news.txt", "csv", false, "out/news.txt"},
		{"out/news.txt", "csv", true, "out/news.csv"},
		{"out/news.json", "mongodb", true, "out/news.json"},
	}
	for _, tt := range tests {
		if got := pathFor(tt.path, tt.kind, tt.force); got != tt.want {
			t.Errorf("pathFor(%q, %q, %v) = %q, want %q", tt.path, tt.kind, tt.force, got, tt.want)
		}
	}
}

func TestFromConfigUnknown(t *testing.T) {
	cfg := config.DefaultConfig().Storage
	cfg.Type = "xml"
	if _, err := FromConfig(context.Background(), &cfg, testLogger); err == nil {
		t.Error("expected error")
	}
}

func TestMongoStorage(t *testing.T) {
	uri := os.Getenv("STOCKNEWS_TEST_MONGO_URI")
	if testing.Short() || uri == "" {
		t.Skip("set STOCKNEWS_TEST_MONGO_URI to run against a live MongoDB")
	}
	ctx := context.Background()
	s, err := NewMongoStorage(ctx, uri, "stocknews_test", "news", testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Store(ctx, sampleItems); err != nil {
		t.Fatal(err)
	}
}
