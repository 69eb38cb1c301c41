// Package manifest reads and writes the tabular list of infos that defines
// what a catalog contains.
//
// A manifest holds the minimal identifying fields of each info, one row per
// info, nothing fetched. Rows are always written sorted by info ID. Two
// encodings are supported and picked by file extension:
//
//   - CSV (default): a header row naming the columns, then one record per info.
//   - TOML (.toml): an array of [[entry]] tables.
//
// How a row maps to an info is described by a [Schema] supplied by the
// catalog type.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/atomicfile"
	"github.com/matzehuels/catup/pkg/entry"
)

// Format is a manifest encoding.
type Format string

const (
	CSV  Format = "csv"
	TOML Format = "toml"
)

// DetectFormat picks the format for path by extension.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML
	}
	return CSV
}

// Schema maps infos to rows and back.
type Schema[I entry.Identified] struct {
	// Columns lists the row fields in output order.
	Columns []string
	// Encode turns an info into a row. Keys not in Columns are dropped.
	Encode func(I) map[string]string
	// Decode builds an info from a row. Missing cells are empty strings.
	Decode func(row map[string]string) (I, error)
}

// RowError reports a row that could not be decoded.
type RowError struct {
	Path string
	Row  int // 1-based, not counting the CSV header
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: row %d: %v", e.Path, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// File is a manifest on disk.
type File[I entry.Identified] struct {
	Path   string
	Format Format
	Schema Schema[I]
}

// New returns the manifest at path, with the format chosen by extension.
func New[I entry.Identified](path string, schema Schema[I]) *File[I] {
	return &File[I]{Path: path, Format: DetectFormat(path), Schema: schema}
}

// Read returns every info in file order. A missing file is an empty
// manifest.
func (f *File[I]) Read(context.Context) ([]I, error) {
	//nolint:gosec // Path is provided by the caller
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read manifest"), "path", f.Path)
	}

	var rows []map[string]string
	switch f.Format {
	case TOML:
		rows, err = decodeTOML(data)
	default:
		rows, err = decodeCSV(data)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "parse manifest"), "path", f.Path)
	}

	infos := make([]I, 0, len(rows))
	for i, row := range rows {
		info, err := f.Schema.Decode(row)
		if err != nil {
			return nil, &RowError{Path: f.Path, Row: i + 1, Err: err}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Write replaces the manifest with infos, sorted by ID.
func (f *File[I]) Write(_ context.Context, infos []I) error {
	sorted := append([]I(nil), infos...)
	entry.SortByID(sorted)

	rows := make([]map[string]string, len(sorted))
	for i, info := range sorted {
		rows[i] = f.Schema.Encode(info)
	}

	var (
		data []byte
		err  error
	)
	switch f.Format {
	case TOML:
		data, err = encodeTOML(f.Schema.Columns, rows)
	default:
		data, err = encodeCSV(f.Schema.Columns, rows)
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "encode manifest"), "path", f.Path)
	}
	return atomicfile.WriteFile(f.Path, data)
}
