package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/catup/pkg/entry"
	"github.com/matzehuels/catup/pkg/observability"
)

// Error ties a fetch failure to the info it happened for.
type Error struct {
	Index int    // position in the input
	ID    string // info ID
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("fetch %s: %v", e.ID, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// PanicError is the error recorded for a fetcher that panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("fetcher panicked: %v", e.Value) }

// Option configures a call to [Entries].
type Option func(*config)

type config struct {
	hooks  observability.FetchHooks
	logger *log.Logger
}

// WithObserver sets hooks notified as batches and fetches start and finish.
func WithObserver(h observability.FetchHooks) Option {
	return func(c *config) { c.hooks = observability.OrNoopFetch(h) }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Entries fetches every info, at most limit at a time, and returns the
// collected results. A limit below 1 is treated as 1.
func Entries[I entry.Info[E], E any](ctx context.Context, infos []I, limit int, opts ...Option) *Results[I, E] {
	cfg := config{hooks: observability.NoopFetchHooks{}, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&cfg)
	}
	limit = max(limit, 1)

	res := &Results[I, E]{items: make([]Result[I, E], len(infos))}
	for start := 0; start < len(infos); start += limit {
		end := min(start+limit, len(infos))

		if err := ctx.Err(); err != nil {
			cfg.logger.Debug("context done, skipping remaining fetches", "skipped", len(infos)-start)
			for i := start; i < len(infos); i++ {
				res.items[i] = Result[I, E]{Index: i, Info: infos[i], Err: err}
			}
			break
		}

		batch := res.batches
		cfg.hooks.OnBatchStart(ctx, batch, end-start)
		cfg.logger.Debug("dispatching batch", "batch", batch, "size", end-start, "done", start, "total", len(infos))

		// Members report failures through their Result, never through the
		// group, so one failure does not cancel its siblings.
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				res.items[i] = run[I, E](ctx, cfg.hooks, i, infos[i])
				return nil
			})
		}
		_ = g.Wait()
		res.batches++
	}
	return res
}

func run[I entry.Info[E], E any](ctx context.Context, hooks observability.FetchHooks, index int, info I) (r Result[I, E]) {
	id := info.ID()
	r = Result[I, E]{Index: index, Info: info}
	started := time.Now()
	hooks.OnFetchStart(ctx, id)

	defer func() {
		if p := recover(); p != nil {
			var zero E
			r.Entry, r.Err = zero, &PanicError{Value: p}
		}
		hooks.OnFetchComplete(ctx, id, time.Since(started), r.Err)
	}()

	r.Entry, r.Err = info.Fetch(ctx)
	if r.Err != nil {
		var zero E
		r.Entry = zero
	}
	return r
}

// Result is the outcome of fetching one info.
type Result[I any, E any] struct {
	Index int
	Info  I
	Entry E
	Err   error
}

// Results holds the outcome of one [Entries] call, in input order.
type Results[I entry.Info[E], E any] struct {
	items   []Result[I, E]
	batches int
}

// All returns every result in input order.
func (r *Results[I, E]) All() []Result[I, E] {
	return append([]Result[I, E](nil), r.items...)
}

// Len returns the number of results, which equals the number of inputs.
func (r *Results[I, E]) Len() int { return len(r.items) }

// Batches returns how many batches were dispatched.
func (r *Results[I, E]) Batches() int { return r.batches }

// settled returns, per ID, the result at the latest input position.
func (r *Results[I, E]) settled() map[string]Result[I, E] {
	out := make(map[string]Result[I, E], len(r.items))
	for _, it := range r.items {
		out[it.Info.ID()] = it
	}
	return out
}

// Entries returns the successfully fetched entries keyed by ID. When several
// inputs share an ID, the one latest in input order decides the outcome.
func (r *Results[I, E]) Entries() map[string]E {
	out := make(map[string]E)
	for id, it := range r.settled() {
		if it.Err == nil {
			out[id] = it.Entry
		}
	}
	return out
}

// Failures returns the fetch errors keyed by ID, with the same collision
// rule as Entries.
func (r *Results[I, E]) Failures() map[string]error {
	out := make(map[string]error)
	for id, it := range r.settled() {
		if it.Err != nil {
			out[id] = it.Err
		}
	}
	return out
}

// Err joins the failures in input order as [*Error] values, or returns nil
// when every ID was fetched.
func (r *Results[I, E]) Err() error {
	settled := r.settled()
	var errs []error
	for _, it := range r.items {
		if it.Err == nil {
			continue
		}
		if last := settled[it.Info.ID()]; last.Index != it.Index {
			continue
		}
		errs = append(errs, &Error{Index: it.Index, ID: it.Info.ID(), Err: it.Err})
	}
	return errors.Join(errs...)
}
