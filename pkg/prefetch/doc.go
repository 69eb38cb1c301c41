// Package prefetch wraps the Nix prefetch tools used to pin sources.
//
// Three tools are supported:
//
//   - nix-prefetch-url: [Prefetcher.URL] downloads a URL into the Nix store
//     and returns its hash and store path.
//   - nix-prefetch-git: [Prefetcher.Git] clones a repository at a revision.
//   - nurl: [Prefetcher.Nurl] returns a ready-made fetcher call
//     (fetchFromGitHub, fetchgit, ...) with its arguments and hash;
//     [Prefetcher.NurlParse] returns the arguments without hashing.
//
// Every call is memoized in a [cache.Namespace] named after the tool, keyed
// by its arguments. Prefetch results are content-addressed, so they are safe
// to keep across runs. Permanent failures are recorded and replayed as
// [*cache.RecordedError]; cancellation and a missing executable are not.
//
// Commands run through a [Runner]. [ExecRunner] starts real processes; tests
// substitute the generated mock in the mocks subpackage.
package prefetch
