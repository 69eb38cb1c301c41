// Package fetch runs Info.Fetch for many infos with bounded concurrency.
//
// [Entries] splits its input into consecutive batches of at most limit
// infos. All members of a batch run concurrently; the next batch starts only
// once every member of the previous one has settled. The number of fetches
// in flight therefore never exceeds limit.
//
// The orchestrator is best-effort: it never fails as a whole. Each result is
// tagged with its position in the input and its ID, and failures (including
// panics inside a fetcher) are kept per entry. Callers decide what a failure
// means for them:
//
//	results := fetch.Entries(ctx, infos, 32, fetch.WithLogger(logger))
//	if err := results.Err(); err != nil {
//	    return err
//	}
//	for id, e := range results.Entries() { ... }
//
// There is no timeout or retry here. The context is handed to every fetcher,
// which owns its own deadlines; once the context is done, infos of batches
// that have not started yet fail with the context error without being
// fetched.
package fetch
