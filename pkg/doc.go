// Package pkg provides the libraries behind catup, a catalog update engine.
//
// # Overview
//
// catup keeps a JSON catalog of package metadata in sync with upstream
// sources. A manifest lists the entries to track; every run fetches some or
// all of them concurrently and merges the results into the catalog. The pkg
// directory is organized into three areas:
//
//  1. Engine: [entry], [fetch], [reconcile] (identity model, bounded fetching,
//     add and update)
//  2. Persistence: [cache], [catalog], [manifest], [atomicfile]
//  3. Fetchers: [integrations], [prefetch], and the reference catalog type
//     [catalogs/ghrepos]
//
// # Architecture
//
// The data flow of one run:
//
//	ids / manifest
//	      ↓
//	 [reconcile] (parse ids, select entries)
//	      ↓
//	 [fetch] (batches of at most Jobs concurrent Info.Fetch calls)
//	      ↓        ↘
//	      ↓         [cache] (memoized API calls and prefetch results)
//	      ↓
//	 [catalog] (merge, write atomically)
//
// # Quick Start
//
//	store := cache.Open(backend)
//	defer store.Close(ctx)
//
//	gh := github.NewClient(store.Namespace(github.Namespace), github.Config{})
//	kind := ghrepos.NewKind("catup.csv", gh, prefetch.New(store))
//	r := reconcile.New[ghrepos.Info, ghrepos.Entry](kind,
//	    catalog.NewJSONFile[ghrepos.Entry]("catup.json"),
//	    reconcile.Options{Jobs: 32})
//
//	report, err := r.Add(ctx, []string{"acme/widget"})
//
// # Extending
//
// A new catalog type implements [reconcile.Kind] for its info type and an
// [entry.Info] whose Fetch builds the entry. See [catalogs/ghrepos].
//
// [entry]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/entry
// [fetch]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/fetch
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/reconcile
// [reconcile.Kind]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/reconcile#Kind
// [entry.Info]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/entry#Info
// [cache]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/cache
// [catalog]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/catalog
// [manifest]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/manifest
// [atomicfile]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/atomicfile
// [integrations]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/integrations
// [prefetch]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/prefetch
// [catalogs/ghrepos]: https://pkg.go.dev/github.com/matzehuels/catup/pkg/catalogs/ghrepos
package pkg
