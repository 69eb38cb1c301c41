// Package atomicfile replaces files so that readers never observe a partial
// write.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

const (
	// DirPerm is used for directories created on demand.
	DirPerm = 0o755
	// FilePerm is applied to every written file.
	FilePerm = 0o644
)

// WriteFile writes data to a uniquely named temp file next to path and
// renames it over path. Parent directories are created as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "create directory"), "path", dir)
	}

	tmpName := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	tmpFile, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "create temp file"), "path", tmpName)
	}

	// The temp file only survives on failure.
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return zerr.With(zerr.Wrap(err, "write temp file"), "path", tmpName)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return zerr.With(zerr.Wrap(err, "sync temp file"), "path", tmpName)
	}
	if err := tmpFile.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "close temp file"), "path", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, "replace file"), "path", path)
	}
	return nil
}
