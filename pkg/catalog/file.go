package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/atomicfile"
)

// JSONFile stores a snapshot as a JSON object mapping ids to entries.
//
// Keys are sorted and indented by two spaces and the file ends with a
// newline, so unchanged catalogs are written byte for byte identically and
// diffs stay small. Writes replace the file atomically.
type JSONFile[E any] struct {
	path string
}

// NewJSONFile returns a store for the file at path.
func NewJSONFile[E any](path string) *JSONFile[E] {
	return &JSONFile[E]{path: filepath.Clean(path)}
}

// Path returns the file location.
func (f *JSONFile[E]) Path() string { return f.path }

// Load reads the snapshot. A missing file is an empty snapshot; a file that
// cannot be read or parsed is an error.
func (f *JSONFile[E]) Load(context.Context) (map[string]E, error) {
	//nolint:gosec // Path is provided by the caller
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]E{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(ErrPersistence, err), "read catalog"), "path", f.path)
	}

	entries := map[string]E{}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(ErrPersistence, err), "parse catalog"), "path", f.path)
	}
	return entries, nil
}

// Save writes the snapshot.
func (f *JSONFile[E]) Save(_ context.Context, entries map[string]E) error {
	data, err := Encode(entries)
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(ErrPersistence, err), "encode catalog"), "path", f.path)
	}
	if err := atomicfile.WriteFile(f.path, data); err != nil {
		return zerr.Wrap(errors.Join(ErrPersistence, err), "write catalog")
	}
	return nil
}

// Encode renders a snapshot in the on-disk format: sorted keys, two-space
// indentation, no HTML escaping and a trailing newline.
func Encode[E any](entries map[string]E) ([]byte, error) {
	if entries == nil {
		entries = map[string]E{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Ensure JSONFile implements Store.
var _ Store[any] = (*JSONFile[any])(nil)
