// Package catalog persists catalog snapshots: the id-to-entry map that an
// update run reads, merges into and writes back.
//
// Two stores are provided. [JSONFile] keeps the snapshot in one pretty
// printed JSON object with sorted keys, the format checked into a package
// set repository. [Mongo] keeps one document per entry in a MongoDB
// collection for deployments that share a catalog between machines.
package catalog

import (
	"context"
	"errors"
)

// Store loads and saves a complete snapshot.
type Store[E any] interface {
	// Load returns the persisted snapshot. A snapshot that was never saved
	// is empty, not an error.
	Load(ctx context.Context) (map[string]E, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, entries map[string]E) error
}

// ErrPersistence marks failures to read or write a snapshot.
var ErrPersistence = errors.New("catalog persistence failed")
