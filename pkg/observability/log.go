package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogFetchHooks writes fetch events to a logger at debug level, and failed
// fetches at warn level.
type LogFetchHooks struct{ Logger *log.Logger }

func (h LogFetchHooks) OnBatchStart(_ context.Context, batch, size int) {
	h.Logger.Debug("starting batch", "batch", batch, "size", size)
}

func (h LogFetchHooks) OnFetchStart(_ context.Context, id string) {
	h.Logger.Debug("fetching", "id", id)
}

func (h LogFetchHooks) OnFetchComplete(_ context.Context, id string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("fetch failed", "id", id, "took", d.Round(time.Millisecond), "err", err)
		return
	}
	h.Logger.Debug("fetched", "id", id, "took", d.Round(time.Millisecond))
}

// LogCacheHooks writes cache events to a logger at debug level.
type LogCacheHooks struct{ Logger *log.Logger }

func (h LogCacheHooks) OnCacheHit(_ context.Context, ns string) {
	h.Logger.Debug("cache hit", "namespace", ns)
}

func (h LogCacheHooks) OnCacheMiss(_ context.Context, ns string) {
	h.Logger.Debug("cache miss", "namespace", ns)
}

func (h LogCacheHooks) OnCacheSet(_ context.Context, ns string, size int) {
	h.Logger.Debug("cache set", "namespace", ns, "bytes", size)
}

func (h LogCacheHooks) OnCacheCorrupt(_ context.Context, ns, key string, err error) {
	h.Logger.Debug("ignoring corrupt cache data", "namespace", ns, "key", key, "err", err)
}

// LogHTTPHooks writes HTTP events to a logger at debug level.
type LogHTTPHooks struct{ Logger *log.Logger }

func (h LogHTTPHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHTTPHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h LogHTTPHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ FetchHooks = LogFetchHooks{}
	_ CacheHooks = LogCacheHooks{}
	_ HTTPHooks  = LogHTTPHooks{}
)
