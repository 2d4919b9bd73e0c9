package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/stocknews/internal/config"
	"github.com/IshaanNene/stocknews/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists the complete, ordered collection in one operation.
	// File backends replace their target atomically.
	Store(ctx context.Context, items []types.NewsItem) error

	// Close releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the backend for a single storage type. outputPath is used
// by the file backends.
func New(ctx context.Context, storageType, outputPath string, cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(outputPath, logger), nil
	case "jsonl":
		return NewJSONLStorage(outputPath, logger), nil
	case "csv":
		return NewCSVStorage(outputPath, logger), nil
	case "mongodb":
		return NewMongoStorage(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// FromConfig creates the configured backend. A comma-separated type such
// as "json,csv" fans out to several backends. Every file backend writes to
// the output path with its own extension, so a CSV backend never lands in
// a .json file.
func FromConfig(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (Storage, error) {
	kinds := strings.Split(cfg.Type, ",")
	if len(kinds) == 1 {
		kind := strings.TrimSpace(kinds[0])
		return New(ctx, kind, pathFor(cfg.OutputPath, kind, false), cfg, logger)
	}

	backends := make([]Storage, 0, len(kinds))
	for i, kind := range kinds {
		kind = strings.TrimSpace(kind)
		backend, err := New(ctx, kind, pathFor(cfg.OutputPath, kind, i > 0), cfg, logger)
		if err != nil {
			for _, b := range backends {
				b.Close()
			}
			return nil, err
		}
		backends = append(backends, backend)
	}
	return NewMultiStorage(backends, logger), nil
}

var fileKinds = map[string]bool{"json": true, "jsonl": true, "csv": true}

// pathFor swaps the extension of path to match a file backend kind when
// the path carries another backend's extension. Other extensions, such as
// .txt, are kept unless force is set, which the extra backends of a
// fan-out need to avoid writing over each other.
func pathFor(path, kind string, force bool) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if !fileKinds[kind] || ext == kind {
		return path
	}
	if !force && ext != "" && !fileKinds[strings.ToLower(ext)] {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + kind
}
