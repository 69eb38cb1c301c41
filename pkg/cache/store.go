package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/observability"
)

// Backend persists whole namespaces. Implementations must be safe for
// concurrent use by one Store.
type Backend interface {
	// Load returns every record of namespace. A namespace that was never
	// saved is empty, not an error. Data that exists but cannot be decoded
	// is reported as a [*CorruptError].
	Load(ctx context.Context, namespace string) (map[string]json.RawMessage, error)

	// Save replaces the stored contents of namespace with records.
	Save(ctx context.Context, namespace string, records map[string]json.RawMessage) error

	// Clear deletes every namespace.
	Clear(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks sets the hooks notified of cache events.
func WithHooks(h observability.CacheHooks) Option {
	return func(s *Store) { s.hooks = observability.OrNoopCache(h) }
}

// WithSingleFlight makes concurrent [Memo] misses for the same key in one
// namespace share a single call.
func WithSingleFlight() Option {
	return func(s *Store) { s.singleFlight = true }
}

// Store is a process-wide cache made of isolated namespaces.
// It is safe for concurrent use.
type Store struct {
	backend      Backend
	logger       *log.Logger
	hooks        observability.CacheHooks
	singleFlight bool

	mu         sync.Mutex
	namespaces map[string]*Namespace
	closed     bool
}

// Open creates a store over backend. Nothing is read until a namespace is
// first used.
func Open(backend Backend, opts ...Option) *Store {
	if backend == nil {
		backend = NewNullBackend()
	}
	s := &Store{
		backend:    backend,
		logger:     log.New(io.Discard),
		hooks:      observability.NoopCacheHooks{},
		namespaces: make(map[string]*Namespace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var validNamespace = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateNamespace reports whether name can be used as a namespace.
// Names become file names and bucket names, so they are restricted to
// letters, digits, dots, underscores and hyphens.
func ValidateNamespace(name string) error {
	if !validNamespace.MatchString(name) {
		return zerr.With(errors.New("invalid cache namespace"), "namespace", name)
	}
	return nil
}

// Namespace returns the keyspace called name, creating it on first use.
// Repeated calls return the same namespace. It panics if name is invalid
// (see [ValidateNamespace]); namespace names are fixed by callers.
func (s *Store) Namespace(name string) *Namespace {
	if err := ValidateNamespace(name); err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.namespaces[name]; ok {
		return ns
	}
	ns := newNamespace(s, name)
	s.namespaces[name] = ns
	return ns
}

// Flush writes every namespace changed since it was loaded or last flushed.
// Errors from individual namespaces are joined.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	s.mu.Unlock()
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		s.mu.Lock()
		ns := s.namespaces[name]
		s.mu.Unlock()
		if err := ns.flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes the store and closes its backend. Later calls are no-ops.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	flushErr := s.Flush(ctx)
	if err := s.backend.Close(); err != nil {
		return errors.Join(flushErr, zerr.Wrap(err, "close cache backend"))
	}
	return flushErr
}

// Clear empties every namespace, in memory and in the backend.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.namespaces = make(map[string]*Namespace)
	s.mu.Unlock()
	if err := s.backend.Clear(ctx); err != nil {
		return zerr.Wrap(err, "clear cache")
	}
	return nil
}
