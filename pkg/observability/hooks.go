// Package observability provides hooks for metrics, progress reporting and
// logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific backends. Hooks are plain interfaces that are
// handed to the components that emit events (the fetch orchestrator, the
// cache store, the HTTP client) when those are constructed. There is no
// process-wide registry: two reconcilers in one process can observe
// different hooks.
//
// # Usage
//
// Build the hooks at startup and pass them down:
//
//	hooks := observability.MultiFetchHooks(progress, metrics)
//	results := fetch.Entries(ctx, infos, 32, fetch.WithObserver(hooks))
//
// Components fall back to the no-op implementations when given nil.
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives events from the fetch orchestrator.
//
// Methods may be called concurrently from the goroutines of one batch.
type FetchHooks interface {
	// OnBatchStart is called before the members of a batch are started.
	// Batches are numbered from zero.
	OnBatchStart(ctx context.Context, batch, size int)

	// OnFetchStart is called when one fetch begins.
	OnFetchStart(ctx context.Context, id string)

	// OnFetchComplete is called when one fetch settles, with its error if any.
	OnFetchComplete(ctx context.Context, id string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. The namespace names the
// keyspace the event belongs to.
type CacheHooks interface {
	// OnCacheHit records a cache hit, including replayed failures.
	OnCacheHit(ctx context.Context, namespace string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, namespace string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, namespace string, size int)

	// OnCacheCorrupt records a record or namespace that could not be decoded.
	// Corrupt data is treated as a miss.
	OnCacheCorrupt(ctx context.Context, namespace, key string, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnBatchStart(context.Context, int, int)                        {}
func (NoopFetchHooks) OnFetchStart(context.Context, string)                          {}
func (NoopFetchHooks) OnFetchComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)                    {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)                   {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)               {}
func (NoopCacheHooks) OnCacheCorrupt(context.Context, string, string, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Fan-out
// =============================================================================

// MultiFetchHooks returns hooks that forward every event to each non-nil h
// in order.
func MultiFetchHooks(hooks ...FetchHooks) FetchHooks {
	var out multiFetch
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return NoopFetchHooks{}
	}
	return out
}

type multiFetch []FetchHooks

func (m multiFetch) OnBatchStart(ctx context.Context, batch, size int) {
	for _, h := range m {
		h.OnBatchStart(ctx, batch, size)
	}
}

func (m multiFetch) OnFetchStart(ctx context.Context, id string) {
	for _, h := range m {
		h.OnFetchStart(ctx, id)
	}
}

func (m multiFetch) OnFetchComplete(ctx context.Context, id string, d time.Duration, err error) {
	for _, h := range m {
		h.OnFetchComplete(ctx, id, d, err)
	}
}

// MultiCacheHooks returns hooks that forward every event to each non-nil h
// in order.
func MultiCacheHooks(hooks ...CacheHooks) CacheHooks {
	var out multiCache
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return NoopCacheHooks{}
	}
	return out
}

type multiCache []CacheHooks

func (m multiCache) OnCacheHit(ctx context.Context, ns string) {
	for _, h := range m {
		h.OnCacheHit(ctx, ns)
	}
}

func (m multiCache) OnCacheMiss(ctx context.Context, ns string) {
	for _, h := range m {
		h.OnCacheMiss(ctx, ns)
	}
}

func (m multiCache) OnCacheSet(ctx context.Context, ns string, size int) {
	for _, h := range m {
		h.OnCacheSet(ctx, ns, size)
	}
}

func (m multiCache) OnCacheCorrupt(ctx context.Context, ns, key string, err error) {
	for _, h := range m {
		h.OnCacheCorrupt(ctx, ns, key, err)
	}
}

// OrNoopFetch returns h, or the no-op hooks when h is nil.
func OrNoopFetch(h FetchHooks) FetchHooks {
	if h == nil {
		return NoopFetchHooks{}
	}
	return h
}

// OrNoopCache returns h, or the no-op hooks when h is nil.
func OrNoopCache(h CacheHooks) CacheHooks {
	if h == nil {
		return NoopCacheHooks{}
	}
	return h
}

// OrNoopHTTP returns h, or the no-op hooks when h is nil.
func OrNoopHTTP(h HTTPHooks) HTTPHooks {
	if h == nil {
		return NoopHTTPHooks{}
	}
	return h
}
