package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/IshaanNene/stocknews/internal/types"
)

// --- JSON Storage ---

// JSONStorage writes the collection as one indented JSON array.
type JSONStorage struct {
	path   string
	logger *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) *JSONStorage {
	return &JSONStorage{
		path:   outputPath,
		logger: logger.With("component", "json_storage"),
	}
}

func (s *JSONStorage) Name() string { return "json" }

// Path returns the output file path.
func (s *JSONStorage) Path() string { return s.path }

func (s *JSONStorage) Store(ctx context.Context, items []types.NewsItem) error {
	if err := ctx.Err(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	if items == nil {
		items = []types.NewsItem{} // encodes as [] rather than null
	}
	if err := WriteJSONFile(s.path, items); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	s.logger.Info("JSON written", "path", s.path, "items", len(items))
	return nil
}

func (s *JSONStorage) Close() error { return nil }

// --- JSONL Storage ---

// JSONLStorage writes one JSON object per line.
type JSONLStorage struct {
	path   string
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage.
func NewJSONLStorage(outputPath string, logger *slog.Logger) *JSONLStorage {
	return &JSONLStorage{
		path:   outputPath,
		logger: logger.With("component", "jsonl_storage"),
	}
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(ctx context.Context, items []types.NewsItem) error {
	if err := ctx.Err(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	err := WriteFileAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, item := range items {
			if err := enc.Encode(item); err != nil {
				return fmt.Errorf("encode JSONL: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	s.logger.Info("JSONL written", "path", s.path, "items", len(items))
	return nil
}

func (s *JSONLStorage) Close() error { return nil }

// --- CSV Storage ---

var csvHeader = []string{"date", "title", "link", "content"}

// CSVStorage writes the collection as CSV with a fixed header row.
type CSVStorage struct {
	path   string
	logger *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(outputPath string, logger *slog.Logger) *CSVStorage {
	return &CSVStorage{
		path:   outputPath,
		logger: logger.With("component", "csv_storage"),
	}
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(ctx context.Context, items []types.NewsItem) error {
	if err := ctx.Err(); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	err := WriteFileAtomic(s.path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		for _, item := range items {
			if err := cw.Write([]string{item.Date, item.Title, item.Link, item.Content}); err != nil {
				return fmt.Errorf("write CSV row: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: err}
	}
	s.logger.Info("CSV written", "path", s.path, "items", len(items))
	return nil
}

func (s *CSVStorage) Close() error { return nil }
