// Package cache provides the persistent, namespaced key/value store used to
// memoize expensive remote operations.
//
// A [Store] is opened over a [Backend] (JSON files, bbolt, Redis, or nothing
// at all) and hands out isolated keyspaces via [Store.Namespace]. Each
// namespace is loaded from the backend on first use, kept in memory for the
// rest of the run and written back by [Store.Flush] or [Store.Close]:
//
//	store := cache.Open(backend, cache.WithLogger(logger))
//	defer store.Close(ctx)
//
//	ns := store.Namespace("github")
//	repo, err := cache.Memo(ctx, ns, cache.Key("repo", owner, name), fetchRepo)
//
// A record holds either a JSON payload or a recorded failure message.
// Recorded failures are replayed as [*RecordedError] on later lookups, so a
// repository that does not exist is not asked for again on every run.
// Transient failures (cancellation, errors marked with [Retryable]) are never
// recorded.
//
// Keys come from [Key], which hashes the operation name and its arguments
// into a versioned string. Records are never expired by this package; delete
// the backend's data (see [Backend.Clear]) to start over.
//
// Cache problems are never fatal to callers: unreadable namespaces and
// undecodable records are reported through [observability.CacheHooks] and
// treated as misses.
package cache
