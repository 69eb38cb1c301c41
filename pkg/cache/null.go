package cache

import (
	"context"
	"encoding/json"
)

// NullBackend is a backend that never stores anything.
// Records still live in memory for the duration of a run, so repeated
// requests within one run are deduplicated.
type NullBackend struct{}

// NewNullBackend creates a null backend.
func NewNullBackend() Backend {
	return NullBackend{}
}

// Load always returns an empty namespace.
func (NullBackend) Load(context.Context, string) (map[string]json.RawMessage, error) {
	return nil, nil
}

// Save does nothing.
func (NullBackend) Save(context.Context, string, map[string]json.RawMessage) error {
	return nil
}

// Clear does nothing.
func (NullBackend) Clear(context.Context) error { return nil }

// Close does nothing.
func (NullBackend) Close() error { return nil }

// Ensure NullBackend implements Backend.
var _ Backend = NullBackend{}
