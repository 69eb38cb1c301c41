package reconcile

import (
	"context"
	"errors"
	"io"
	"maps"

	"github.com/charmbracelet/log"
	"go.trai.ch/zerr"

	"github.com/matzehuels/catup/pkg/catalog"
	"github.com/matzehuels/catup/pkg/entry"
	"github.com/matzehuels/catup/pkg/fetch"
	"github.com/matzehuels/catup/pkg/observability"
)

// DefaultJobs is the default fetch concurrency.
const DefaultJobs = 32

// Kind describes one catalog type.
type Kind[I any] interface {
	// AllEntries reads every info listed in the manifest. A missing manifest
	// is empty.
	AllEntries(ctx context.Context) ([]I, error)

	// WriteManifest replaces the manifest with infos, sorted by ID.
	WriteManifest(ctx context.Context, infos []I) error

	// ParseID builds an info from user input.
	ParseID(raw string) (I, error)
}

// Options tunes a Reconciler.
type Options struct {
	// Jobs bounds concurrent fetches. Zero means DefaultJobs.
	Jobs int
	// KeepGoing persists partial results when some fetches fail.
	KeepGoing bool
	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
	// Hooks observe individual fetches.
	Hooks observability.FetchHooks
}

// Report summarizes one run.
type Report struct {
	Requested int // infos selected for fetching
	Fetched   int // fetched successfully
	Failed    int // failed to fetch

	ManifestBefore, ManifestAfter int
	CatalogBefore, CatalogAfter   int
}

// Reconciler runs add and update for one catalog type.
type Reconciler[I entry.Info[E], E any] struct {
	kind   Kind[I]
	store  catalog.Store[E]
	opts   Options
	logger *log.Logger
}

// New creates a Reconciler.
func New[I entry.Info[E], E any](kind Kind[I], store catalog.Store[E], opts Options) *Reconciler[I, E] {
	if opts.Jobs <= 0 {
		opts.Jobs = DefaultJobs
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reconciler[I, E]{kind: kind, store: store, opts: opts, logger: logger}
}

// Add fetches the infos named by ids, adds them to the manifest and merges
// them into the snapshot. Infos already in the manifest are fetched again.
// Every id is parsed before anything is read or fetched; all parse errors
// are reported together.
func (r *Reconciler[I, E]) Add(ctx context.Context, ids []string) (Report, error) {
	var report Report

	requested, err := r.parseAll(ids)
	if err != nil {
		return report, err
	}

	manifest, err := r.kind.AllEntries(ctx)
	if err != nil {
		return report, zerr.Wrap(err, "read manifest")
	}
	known := entry.NewSet(manifest...)
	report.ManifestBefore = known.Len()

	snapshot, err := r.store.Load(ctx)
	if err != nil {
		return report, zerr.Wrap(err, "load catalog")
	}
	report.CatalogBefore = len(snapshot)

	results := r.fetch(ctx, requested.Items(), &report)
	failures := results.Failures()
	if len(failures) > 0 && !r.opts.KeepGoing {
		return report, r.abort(results)
	}

	for _, info := range requested.Items() {
		if _, failed := failures[info.ID()]; !failed {
			known.Add(info)
		}
	}
	if err := r.kind.WriteManifest(ctx, known.Items()); err != nil {
		return report, zerr.Wrap(err, "write manifest")
	}
	report.ManifestAfter = known.Len()

	merged := maps.Clone(snapshot)
	if merged == nil {
		merged = map[string]E{}
	}
	maps.Copy(merged, results.Entries())
	if err := r.store.Save(ctx, merged); err != nil {
		return report, zerr.Wrap(err, "save catalog")
	}
	report.CatalogAfter = len(merged)

	return report, r.partial(failures, requested.Len())
}

// Update refetches entries and replaces their snapshot values.
//
// With no ids every manifest info is refetched. Otherwise only the named ids
// are refetched: each id is matched against the manifest, either verbatim or
// after Kind.ParseID, and a match reuses the manifest info with all of its
// fields. Unmatched ids are fetched as parsed. Snapshot entries that were
// not fetched are kept as they are, and the manifest is never modified.
func (r *Reconciler[I, E]) Update(ctx context.Context, ids []string) (Report, error) {
	var report Report

	manifest, err := r.kind.AllEntries(ctx)
	if err != nil {
		return report, zerr.Wrap(err, "read manifest")
	}
	known := entry.NewSet(manifest...)
	report.ManifestBefore = known.Len()
	report.ManifestAfter = known.Len()

	selected := known
	if len(ids) > 0 {
		if selected, err = r.resolve(known, ids); err != nil {
			return report, err
		}
	}

	snapshot, err := r.store.Load(ctx)
	if err != nil {
		return report, zerr.Wrap(err, "load catalog")
	}
	report.CatalogBefore = len(snapshot)

	results := r.fetch(ctx, selected.Items(), &report)
	failures := results.Failures()
	if len(failures) > 0 && !r.opts.KeepGoing {
		return report, r.abort(results)
	}

	next := maps.Clone(snapshot)
	if next == nil {
		next = map[string]E{}
	}
	maps.Copy(next, results.Entries())

	if err := r.store.Save(ctx, next); err != nil {
		return report, zerr.Wrap(err, "save catalog")
	}
	report.CatalogAfter = len(next)

	return report, r.partial(failures, selected.Len())
}

func (r *Reconciler[I, E]) parseAll(ids []string) (*entry.Set[I], error) {
	set := entry.NewSet[I]()
	var errs []error
	for _, raw := range ids {
		info, err := r.kind.ParseID(raw)
		if err != nil {
			errs = append(errs, &ParseError{Raw: raw, Err: err})
			continue
		}
		set.Add(info)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return set, nil
}

// resolve resolves update ids against the manifest.
func (r *Reconciler[I, E]) resolve(known *entry.Set[I], ids []string) (*entry.Set[I], error) {
	byID := make(map[string]I, known.Len())
	for _, info := range known.Items() {
		byID[info.ID()] = info
	}

	set := entry.NewSet[I]()
	var errs []error
	for _, raw := range ids {
		if info, ok := byID[raw]; ok {
			set.Add(info)
			continue
		}
		info, err := r.kind.ParseID(raw)
		if err != nil {
			errs = append(errs, &ParseError{Raw: raw, Err: err})
			continue
		}
		if listed, ok := byID[info.ID()]; ok {
			info = listed
		}
		set.Add(info)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return set, nil
}

func (r *Reconciler[I, E]) fetch(ctx context.Context, infos []I, report *Report) *fetch.Results[I, E] {
	report.Requested = len(infos)
	r.logger.Info("fetching entries", "count", len(infos), "jobs", r.opts.Jobs)
	r.logger.Debug("selected entries", "ids", entry.IDs(infos))

	results := fetch.Entries(ctx, infos, r.opts.Jobs,
		fetch.WithObserver(r.opts.Hooks),
		fetch.WithLogger(r.logger),
	)
	report.Failed = len(results.Failures())
	report.Fetched = len(results.Entries())
	return results
}

func (r *Reconciler[I, E]) abort(results *fetch.Results[I, E]) error {
	r.logger.Error("fetch failed, nothing was written", "failed", len(results.Failures()))
	return zerr.With(zerr.Wrap(results.Err(), "fetch failed"), "failed", len(results.Failures()))
}

func (r *Reconciler[I, E]) partial(failures map[string]error, total int) error {
	if len(failures) == 0 {
		return nil
	}
	r.logger.Warn("some entries failed, kept their previous values", "failed", len(failures))
	return &PartialError{Failures: failures, Total: total}
}
