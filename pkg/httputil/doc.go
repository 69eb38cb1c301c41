// Package httputil provides HTTP plumbing shared by the remote fetchers.
//
// [Retry] runs an operation up to a fixed number of attempts with
// exponential backoff. Only errors marked with [cache.Retryable] are
// retried; everything else (a 404, a malformed response) is returned
// immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return client.Get(ctx, url, &v)
//	})
package httputil
