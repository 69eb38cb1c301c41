package cache

import (
	"context"
	"fmt"
)

// Memo returns the cached result of fn for key in ns, calling fn on a miss.
//
// A hit decodes the stored payload into T. A recorded failure is returned as
// a [*RecordedError] without calling fn. Undecodable records are dropped and
// treated as misses. On a miss the value returned by fn is stored; a failure is
// recorded unless it is transient (cancellation or [Retryable]).
//
// When the store was opened [WithSingleFlight], concurrent misses for the
// same key share one call to fn.
func Memo[T any](ctx context.Context, ns *Namespace, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	res := ns.Get(ctx, key)
	switch {
	case res.Failed():
		return zero, res.Decode(nil)
	case res.Status == Found:
		var v T
		err := res.Decode(&v)
		if err == nil {
			return v, nil
		}
		ns.store.hooks.OnCacheCorrupt(ctx, ns.name, key, err)
		ns.store.logger.Debug("dropping undecodable cache record", "namespace", ns.name, "key", key, "err", err)
		ns.Delete(ctx, key)
	case res.Status == Corrupt:
		ns.Delete(ctx, key)
	}

	compute := func() (T, error) {
		v, err := fn(ctx)
		if err != nil {
			if !isTransient(err) {
				if setErr := ns.SetFailure(ctx, key, err); setErr != nil {
					ns.store.logger.Debug("could not record failure", "namespace", ns.name, "err", setErr)
				}
			}
			return zero, err
		}
		if setErr := ns.Set(ctx, key, v); setErr != nil {
			ns.store.logger.Debug("could not cache value", "namespace", ns.name, "err", setErr)
		}
		return v, nil
	}

	if !ns.store.singleFlight {
		return compute()
	}
	out, err, _ := ns.group.Do(key, func() (any, error) {
		return compute()
	})
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("cache: shared result for %s has type %T", key, out)
	}
	return v, nil
}
