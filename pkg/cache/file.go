package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/atomicfile"
)

// AppName names the per-user cache and config directories.
const AppName = "catup"

// DefaultDir returns $XDG_CACHE_HOME/catup, falling back to ~/.cache/catup.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", zerr.Wrap(err, "locate home directory")
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// FileBackend stores each namespace as one JSON object in <dir>/<name>.json.
// Files are replaced atomically, so a crash never leaves a torn namespace.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend in dir, or in [DefaultDir] when dir
// is empty. The directory will be created if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, atomicfile.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "create cache directory"), "path", dir)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the cache directory.
func (b *FileBackend) Dir() string { return b.dir }

// Load reads <dir>/<namespace>.json. A missing file is an empty namespace.
func (b *FileBackend) Load(_ context.Context, namespace string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(b.path(namespace))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read cache namespace"), "path", b.path(namespace))
	}
	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptError{Namespace: namespace, Err: err}
	}
	return records, nil
}

// Save writes records to <dir>/<namespace>.json with sorted keys.
func (b *FileBackend) Save(_ context.Context, namespace string, records map[string]json.RawMessage) error {
	data, err := json.Marshal(records)
	if err != nil {
		return zerr.Wrap(err, "encode cache namespace")
	}
	return atomicfile.WriteFile(b.path(namespace), data)
}

// Clear removes every namespace file in the cache directory.
func (b *FileBackend) Clear(context.Context) error {
	matches, err := filepath.Glob(filepath.Join(b.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "remove cache file"), "path", m)
		}
	}
	return nil
}

// Close does nothing for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) path(namespace string) string {
	return filepath.Join(b.dir, namespace+".json")
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
