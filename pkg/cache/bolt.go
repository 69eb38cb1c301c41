package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"
	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/atomicfile"
)

// BoltFileName is the database file created inside a cache directory.
const BoltFileName = "cache.db"

// BoltBackend stores each namespace as a bbolt bucket.
//
// bbolt holds an exclusive file lock, so only one process can use the
// database at a time; Open waits up to a second for it.
type BoltBackend struct {
	db   *bbolt.DB
	path string
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), atomicfile.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "create cache directory"), "path", path)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "open cache database"), "path", path)
	}
	return &BoltBackend{db: db, path: path}, nil
}

// Path returns the database file.
func (b *BoltBackend) Path() string { return b.path }

// Load reads every key of the namespace bucket.
func (b *BoltBackend) Load(_ context.Context, namespace string) (map[string]json.RawMessage, error) {
	records := make(map[string]json.RawMessage)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			// Values are only valid for the life of the transaction.
			records[string(k)] = append(json.RawMessage(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read cache bucket"), "namespace", namespace)
	}
	return records, nil
}

// Save replaces the namespace bucket in one transaction.
func (b *BoltBackend) Save(_ context.Context, namespace string, records map[string]json.RawMessage) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(namespace)); err != nil && !errors.Is(err, bolterrors.ErrBucketNotFound) {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(namespace))
		if err != nil {
			return err
		}
		for k, v := range records {
			if err := bucket.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear deletes every bucket.
func (b *BoltBackend) Clear(context.Context) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		var names [][]byte
		if err := tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, append([]byte(nil), name...))
			return nil
		}); err != nil {
			return err
		}
		for _, name := range names {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

// Ensure BoltBackend implements Backend.
var _ Backend = (*BoltBackend)(nil)
