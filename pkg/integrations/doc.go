// Package integrations provides the HTTP client shared by remote API
// fetchers.
//
// # Client Pattern
//
// API clients embed [Client] and memoize every remote call through a cache
// namespace:
//
//	ns := store.Namespace("github")
//	client := integrations.NewClient(ns, headers, integrations.WithLogger(logger))
//	err := client.Cached(ctx, cache.Key("repo", owner, repo), &v, func() error {
//	    return client.Get(ctx, url, &v)
//	})
//
// [Client] handles:
//   - default request headers
//   - status mapping: 404 is [ErrNotFound]; 429, 5xx and transport errors
//     are retryable [ErrNetwork] failures
//   - retries with exponential backoff ([httputil.Retry])
//   - response caching, including recorded permanent failures
//
// Each remote service lives in its own subpackage, see [github].
//
// [github]: github.com/matzehuels/catup/pkg/integrations/github
package integrations
