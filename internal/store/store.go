// Package store persists the pipeline's collections as flat JSON
// files. Each run reads whole files and rewrites them whole; there is
// no locking, so concurrent runs must be serialized externally.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Collection is a JSON array-of-objects file holding one record type.
type Collection[T any] struct {
	path   string
	logger *slog.Logger
}

// NewCollection creates a collection backed by the given file path.
func NewCollection[T any](path string, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{path: path, logger: logger}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string { return c.path }

// Load reads the collection. A missing or malformed file loads as an
// empty collection so a run can start fresh for that store instead of
// failing on stale on-disk state.
func (c *Collection[T]) Load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("store file is malformed, treating as empty",
			"path", c.path, "error", err)
		return nil, nil
	}
	return items, nil
}

// Save rewrites the collection atomically (temp file + rename), so a
// crash mid-write leaves the previous contents intact.
func (c *Collection[T]) Save(items []T) error {
	if items == nil {
		items = []T{}
	}
	return writeJSON(c.path, items)
}

// WriteDocument persists a single JSON object, such as the run status
// summary, with the same atomic write used for collections.
func WriteDocument(path string, v any) error {
	return writeJSON(path, v)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
